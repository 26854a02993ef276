package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/km-arc/go-autowire/framework/container"
	gohttp "github.com/km-arc/go-autowire/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	return m
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q want application/json", ct)
	}
	m := decodeJSON(t, rr)
	if m["key"] != "val" {
		t.Errorf("body key: got %v want val", m["key"])
	}
}

func TestResponse_Success(t *testing.T) {
	res, rr := newResponse(t)
	res.Success(map[string]any{"id": float64(1)})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	m := decodeJSON(t, rr)
	data, ok := m["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data envelope, got %T", m["data"])
	}
	if data["id"] != float64(1) {
		t.Errorf("data.id: got %v want 1", data["id"])
	}
}

// ── Error helpers ─────────────────────────────────────────────────────────────

func TestResponse_Error(t *testing.T) {
	res, rr := newResponse(t)
	res.Error(http.StatusBadRequest, "bad input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d want 400", rr.Code)
	}
	m := decodeJSON(t, rr)
	if m["message"] != "bad input" {
		t.Errorf("message: got %v want 'bad input'", m["message"])
	}
}

func TestResponse_NotFound(t *testing.T) {
	res, rr := newResponse(t)
	res.NotFound()

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d want 404", rr.Code)
	}
	if m := decodeJSON(t, rr); m["message"] != "Not found." {
		t.Errorf("message: got %v", m["message"])
	}
}

func TestResponse_ServerError_CustomMessage(t *testing.T) {
	res, rr := newResponse(t)
	res.ServerError("db down")

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d want 500", rr.Code)
	}
	if m := decodeJSON(t, rr); m["message"] != "db down" {
		t.Errorf("message: got %v", m["message"])
	}
}

// ── Failure ───────────────────────────────────────────────────────────────────

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &container.NotFoundError{ID: "x"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("outer: %w", &container.NotFoundError{ID: "x"}), http.StatusNotFound},
		{"resolution", &container.ResolutionError{ID: "x", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"unresolved", &container.UnresolvedParameterError{ID: "x"}, http.StatusInternalServerError},
		{"missing dependency", &container.ResolutionError{ID: "controller", Err: &container.NotFoundError{ID: "db"}}, http.StatusInternalServerError},
		{"missing parameter type", &container.UnresolvedParameterError{ID: "x", Cause: &container.NotFoundError{ID: "db"}}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gohttp.StatusOf(tt.err); got != tt.want {
				t.Errorf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestResponse_Failure_HidesErrorWithoutDebug(t *testing.T) {
	res, rr := newResponse(t)
	res.Failure(&container.ResolutionError{ID: "db", Err: errors.New("secret dsn")}, false)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d want 500", rr.Code)
	}
	m := decodeJSON(t, rr)
	if _, ok := m["error"]; ok {
		t.Errorf("error detail leaked: %v", m["error"])
	}
}

func TestResponse_Failure_DebugIncludesError(t *testing.T) {
	res, rr := newResponse(t)
	res.Failure(&container.NotFoundError{ID: "mailer"}, true)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d want 404", rr.Code)
	}
	m := decodeJSON(t, rr)
	if m["error"] == nil {
		t.Error("expected error detail in debug mode")
	}
}

func TestResponse_Failure_MissingDependencyIs500(t *testing.T) {
	c := container.New(container.WithCatalog(container.NewCatalog()))
	c.Set("controller", func(r container.Resolver, _ container.Args) (any, error) {
		return r.Get("db")
	})
	_, err := c.Get("controller")
	if err == nil {
		t.Fatal("expected an error")
	}

	res, rr := newResponse(t)
	res.Failure(err, false)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d want 500", rr.Code)
	}
}

// ── Raw() ─────────────────────────────────────────────────────────────────────

func TestResponse_Raw(t *testing.T) {
	res, rr := newResponse(t)
	if res.Raw() != rr {
		t.Error("Raw() should return the wrapped writer")
	}
}
