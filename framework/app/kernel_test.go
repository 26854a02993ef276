package app_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-autowire/framework/app"
	"github.com/km-arc/go-autowire/framework/bridge"
	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/container"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "test", Env: "testing", Port: "0"},
		Container: config.ContainerConfig{Shared: true},
		Log:       config.LogConfig{Level: "error", Format: "json"},
		Metrics:   config.MetricsConfig{Enabled: true, Namespace: "test"},
	}
}

func newApp(t *testing.T, cfg *config.Config) *app.Application {
	t.Helper()
	a, err := app.New(cfg, container.WithCatalog(container.NewCatalog()))
	require.NoError(t, err)
	return a
}

func TestNew_RejectsInvalidLogConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Log.Format = "xml"
	_, err := app.New(cfg)
	assert.Error(t, err)
}

func TestNew_BindsFrameworkServices(t *testing.T) {
	a := newApp(t, testConfig())

	for _, id := range []string{"container", "config", "logger", "router", "metrics", "metrics.handler"} {
		assert.True(t, a.Has(id), id)
	}
	assert.NotNil(t, a.Metrics())
	assert.Same(t, a.Config(), a.Config())
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	a := newApp(t, cfg)
	a.Boot()

	assert.Nil(t, a.Metrics())
	assert.False(t, a.Has("metrics"))

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNew_DefaultSharePolicyFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Container.Shared = false
	a := newApp(t, cfg)

	n := 0
	a.Set("counter", func(container.Resolver, container.Args) (any, error) {
		n++
		return n, nil
	})
	_, _ = a.Get("counter")
	_, _ = a.Get("counter")
	assert.Equal(t, 2, n)
}

func TestBoot_ServesContainerAndMetrics(t *testing.T) {
	a := newApp(t, testConfig())
	a.Boot()
	require.True(t, a.Providers.Booted())

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/container", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"router"`)

	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `test_container_resolutions_total{id="router",outcome="built"}`)
}

func TestBoot_BridgesDoAndServesHealth(t *testing.T) {
	a := newApp(t, testConfig())
	a.Boot()

	b, err := container.Resolve[*bridge.Bridge](a, "do")
	require.NoError(t, err)
	cfg, err := do.Invoke[*config.Config](b.Injector())
	require.NoError(t, err)
	assert.Same(t, a.Config(), cfg)

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEnvironmentHelpers(t *testing.T) {
	a := newApp(t, testConfig())

	assert.Equal(t, "testing", a.Environment())
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsLocal())
	assert.False(t, a.IsProduction())
	assert.False(t, a.IsDebug())
	assert.NotEmpty(t, a.Version())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := testConfig()
	cfg.App.Port = strconv.Itoa(port)
	a := newApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + cfg.App.Port + "/container")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
