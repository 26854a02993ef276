package app_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-autowire/app"
	kernel "github.com/km-arc/go-autowire/framework/app"
	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/container"
)

func newApplication(t *testing.T) *kernel.Application {
	t.Helper()
	a, err := kernel.New(&config.Config{
		App:       config.AppConfig{Name: "demo", Env: "testing"},
		Container: config.ContainerConfig{Shared: true},
		Log:       config.LogConfig{Level: "error"},
		Metrics:   config.MetricsConfig{Enabled: false},
	})
	require.NoError(t, err)
	a.Register(&app.AppServiceProvider{})
	a.Boot()
	return a
}

func get(t *testing.T, a *kernel.Application, path string) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	var body struct {
		Data map[string]any `json:"data"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&body)
	return rr.Code, body.Data
}

func TestGreeter_AutowiredWithDefaultGreeting(t *testing.T) {
	a := newApplication(t)

	g, err := container.Resolve[*app.Greeter](a, app.GreeterID)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", g.Greet("  "))
	assert.Equal(t, "Hello, Ada!", g.Greet("Ada"))
}

func TestHelloController(t *testing.T) {
	a := newApplication(t)

	code, data := get(t, a, "/hello?name=Ada")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Hello, Ada!", data["message"])
	assert.Equal(t, "demo", data["app"])
}

func TestHelloController_IsTransient(t *testing.T) {
	a := newApplication(t)

	first, err := container.Resolve[*app.HelloController](a, app.HelloControllerID)
	require.NoError(t, err)
	second, err := container.Resolve[*app.HelloController](a, app.HelloControllerID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestHelloWithGreeting_OverridesWithoutCaching(t *testing.T) {
	a := newApplication(t)

	code, data := get(t, a, "/hello/Bonjour?name=Ada")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Bonjour, Ada!", data["message"])

	_, data = get(t, a, "/hello?name=Ada")
	assert.Equal(t, "Hello, Ada!", data["message"])

	b, ok := a.Describe(app.GreeterID)
	require.True(t, ok)
	assert.False(t, b.Shared)
	assert.False(t, b.Cached)
}

func TestStatusController_InjectsStructFields(t *testing.T) {
	a := newApplication(t)

	s, err := container.Resolve[*app.StatusController](a, app.StatusControllerID)
	require.NoError(t, err)
	assert.Same(t, a.Config(), s.Config)
	assert.NotNil(t, s.Logger)

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Cache-Control"))

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "demo", body.Data["app"])
	assert.Equal(t, "testing", body.Data["env"])
}
