package providers

import (
	"net/http"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/km-arc/go-autowire/framework/bridge"
	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/container"
	gohttp "github.com/km-arc/go-autowire/framework/http"
	"github.com/km-arc/go-autowire/framework/logging"
	"github.com/km-arc/go-autowire/framework/metrics"
	"github.com/km-arc/go-autowire/framework/routing"
)

// alias binds the TypeKey of T to id, so auto-wired parameters of type T
// receive the value registered under id.
func alias[T any](app *container.Container, id string) {
	app.Set(container.KeyOf[T](), func(r container.Resolver, args container.Args) (any, error) {
		return r.GetWith(id, args)
	}, container.AsTransient())
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration as "config".
// When Config is nil it is loaded from EnvFiles on first resolution.
//
// Bound ids:
//   - "config"                → *config.Config
//   - KeyOf[*config.Config]() → same value, for auto-wiring
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	if p.Config != nil {
		app.Instance("config", p.Config)
	} else {
		envFiles := p.EnvFiles
		app.Singleton("config", func(container.Resolver) any {
			return config.Load(envFiles...)
		})
	}
	alias[*config.Config](app, "config")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger as "logger". When
// Logger is nil it is built from the "config" log settings.
//
// Bound ids:
//   - "logger"              → *zap.Logger
//   - KeyOf[*zap.Logger]()  → same value, for auto-wiring
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	if p.Logger != nil {
		app.Instance("logger", p.Logger)
	} else {
		app.Set("logger", func(r container.Resolver, _ container.Args) (any, error) {
			cfg, err := container.Resolve[*config.Config](r, "config")
			if err != nil {
				return nil, err
			}
			return logging.New(cfg.Log)
		}, container.AsShared())
	}
	alias[*zap.Logger](app, "logger")
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider is deferred: nothing is bound until "metrics" or
// "metrics.handler" is first resolved. Pass the same Metrics the container
// observes; when nil a fresh one is built from "config" and only sees HTTP
// traffic.
//
// Bound ids:
//   - "metrics"          → *metrics.Metrics
//   - "metrics.handler"  → http.Handler exposing the registry
type MetricsServiceProvider struct {
	container.BaseProvider
	Metrics *metrics.Metrics
}

func (p *MetricsServiceProvider) IsDeferred() bool { return true }

func (p *MetricsServiceProvider) Provides() []string {
	return []string{"metrics", "metrics.handler"}
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	if p.Metrics != nil {
		app.Instance("metrics", p.Metrics)
	} else {
		app.Set("metrics", func(r container.Resolver, _ container.Args) (any, error) {
			cfg, err := container.Resolve[*config.Config](r, "config")
			if err != nil {
				return nil, err
			}
			return metrics.New(cfg.Metrics.Namespace), nil
		}, container.AsShared())
	}
	app.Singleton("metrics.handler", func(r container.Resolver) any {
		return container.MustResolve[*metrics.Metrics](r, "metrics").Handler()
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router and, on Boot, the
// framework routes:
//
//	GET /container        binding list
//	GET /container/{id}   one binding
//	GET /metrics          Prometheus scrape endpoint (when "metrics" is bound)
//
// Bound ids:
//   - "router"  → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Set("router", func(r container.Resolver, _ container.Args) (any, error) {
		cfg, err := container.Resolve[*config.Config](r, "config")
		if err != nil {
			return nil, err
		}
		logger, err := container.Resolve[*zap.Logger](r, "logger")
		if err != nil {
			return nil, err
		}
		opts := []routing.Option{routing.WithLogger(logger), routing.WithDebug(cfg.App.Debug)}
		if r.Has("metrics") {
			m, err := container.Resolve[*metrics.Metrics](r, "metrics")
			if err != nil {
				return nil, err
			}
			opts = append(opts, routing.WithMiddleware(m.Middleware()))
		}
		return routing.New(opts...), nil
	}, container.AsShared())
}

func (p *RoutingServiceProvider) Boot(app *container.Container) {
	router := container.MustResolve[*routing.Router](app, "router")
	router.Mount("/container", routing.Inspect(app))
	if app.Has("metrics.handler") {
		h := container.MustResolve[http.Handler](app, "metrics.handler")
		router.Get("/metrics", h.ServeHTTP)
	}
}

// ── BridgeServiceProvider ─────────────────────────────────────────────────────

// BridgeServiceProvider pairs the container with a samber/do injector. On
// Boot the configuration and logger are exposed to do, and GET /health
// reports the do health checks when a router is bound.
//
// Bound ids:
//   - "do"                    → *bridge.Bridge
//   - KeyOf[*bridge.Bridge]() → same value, for auto-wiring
type BridgeServiceProvider struct {
	container.BaseProvider
	// Injector is bridged when set; otherwise a fresh do.New() is used.
	Injector *do.RootScope
}

func (p *BridgeServiceProvider) Register(app *container.Container) {
	injector := p.Injector
	app.Singleton("do", func(container.Resolver) any {
		return bridge.New(app, injector)
	})
	alias[*bridge.Bridge](app, "do")
}

func (p *BridgeServiceProvider) Boot(app *container.Container) {
	b := container.MustResolve[*bridge.Bridge](app, "do")
	bridge.Expose[*config.Config](b, "config")
	bridge.Expose[*zap.Logger](b, "logger")

	if app.Has("router") {
		router := container.MustResolve[*routing.Router](app, "router")
		router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			status, body := health(b.HealthCheck())
			gohttp.NewResponse(w).JSON(status, body)
		})
	}
}

func health(checks map[string]error) (int, map[string]any) {
	status := http.StatusOK
	out := make(map[string]string, len(checks))
	for name, err := range checks {
		if err != nil {
			status = http.StatusServiceUnavailable
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	return status, map[string]any{"status": state, "checks": out}
}
