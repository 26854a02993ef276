package container

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one feature.
//
// Register() binds services. Boot() runs after ALL providers have been
// registered, so it is safe to resolve other bindings there.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("clock", func(r container.Resolver) any { return clock.New() })
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) {
//	    app.Logger().Info("clock ready")
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides returns the ids this provider registers.
	// Used for deferred (lazy) provider loading.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() ids is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot(), Provides() and
// IsDeferred(). Embed it and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	mu         sync.Mutex
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // id → provider
	loading    map[ServiceProvider]*sync.Once
	unbound    map[string]bool            // deferred ids their provider failed to bind
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		loading:    make(map[ServiceProvider]*sync.Once),
		unbound:    make(map[string]bool),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, id := range provider.Provides() {
			r.deferred[id] = provider
		}
		r.mu.Unlock()
		r.interceptDeferred(provider)
		r.app.Logger().Debug("provider deferred", zap.String("provider", providerName(provider)),
			zap.Strings("provides", provider.Provides()))
		return
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.app)
	if booted {
		provider.Boot(r.app)
	}
	r.app.Logger().Debug("provider registered", zap.String("provider", providerName(provider)))
}

// interceptDeferred binds a placeholder for each deferred id. The first
// resolution registers (and, after Boot, boots) the provider for real, which
// replaces the placeholder, then resolves the id again.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, id := range provider.Provides() {
		abs := id // capture
		r.app.Set(abs, func(_ Resolver, args Args) (any, error) {
			if !r.load(provider, abs) {
				return nil, fmt.Errorf("deferred provider %s did not bind [%s]", providerName(provider), abs)
			}
			return r.app.GetWith(abs, args)
		})
	}
}

// load registers a deferred provider once and reports whether id is now
// bound by it rather than by the placeholder. Concurrent callers wait for
// the first one to finish.
func (r *ProviderRegistry) load(provider ServiceProvider, id string) bool {
	r.mu.Lock()
	once, ok := r.loading[provider]
	if !ok {
		once = new(sync.Once)
		r.loading[provider] = once
	}
	r.mu.Unlock()

	once.Do(func() {
		provides := provider.Provides()
		before := make(map[string]uint64, len(provides))
		for _, abs := range provides {
			before[abs] = r.app.generation(abs)
		}

		provider.Register(r.app)

		r.mu.Lock()
		for _, abs := range provides {
			delete(r.deferred, abs)
			if r.app.generation(abs) == before[abs] {
				r.unbound[abs] = true
			}
		}
		booted := r.booted
		r.mu.Unlock()

		if booted {
			provider.Boot(r.app)
		}
		r.app.Logger().Debug("deferred provider loaded", zap.String("provider", providerName(provider)))
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.unbound[id]
}

// Boot calls Boot() on all eager providers. Later calls are no-ops.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range eager {
		provider.Boot(r.app)
	}
	r.app.Logger().Info("providers booted", zap.Int("eager", len(eager)))
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}

// Deferred returns the ids whose providers have not been loaded yet.
func (r *ProviderRegistry) Deferred() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.deferred))
	for id := range r.deferred {
		out = append(out, id)
	}
	return out
}

func providerName(p ServiceProvider) string {
	return fmt.Sprintf("%T", p)
}
