// Package container provides an auto-wiring IoC (Inversion of Control)
// container and a Service Provider system for Go.
//
// # Overview
//
// The container maps string ids to factories or to declared types. Resolving
// a declared type reflects its constructor (or struct fields) and resolves
// every parameter through the container again, in this order:
//
//  1. a named override passed to GetWith
//  2. the container, when the parameter's type is a named struct or
//     interface type whose TypeKey is resolvable and yields a value of that type
//  3. the declared default
//  4. the zero value, when the parameter is optional
//
// and fails with *UnresolvedParameterError otherwise.
//
// # Factories
//
//	// Shared (default) — created once, reused
//	c.Set("cache", func(r container.Resolver, args container.Args) (any, error) {
//	    return cache.NewRedis(container.MustResolve[*config.Config](r, "config"))
//	})
//
//	// Transient — new instance every Get()
//	c.Bind("request.id", func(r container.Resolver) any { return newID() })
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Change the policy later; NoShare also drops the cached value
//	c.NoShare("cache")
//	c.Share("cache")
//
// # Declared types
//
//	container.MustDeclare(NewService,
//	    container.Param("logger"),
//	    container.Param("name").WithDefault("default"),
//	)
//	c.Set(container.KeyOf[Logger](), loggerFactory)
//
//	svc, err := container.Make[*Service](c)
//	custom, err := container.ResolveWith[*Service](c, container.KeyOf[*Service](),
//	    container.Args{"name": "custom"})
//
// A shared id caches one value per distinct set of overrides, next to its
// plain value. GetFresh skips the cache and replaces the cached value.
//
// Struct types may be declared instead of constructors; their exported fields
// are the parameters (see Catalog.DeclareStruct).
//
// # Errors
//
// Get fails with *NotFoundError, *ResolutionError, *UnresolvedParameterError
// or *CircularDependencyError, each matching its Err* sentinel with errors.Is.
// errors.Is sees through the whole chain; IsNotFound tells an unknown id
// apart from a registered one failing on a missing dependency.
// Cycles are detected across constructors and factories alike, because
// factories receive a Resolver carrying the chain of ids being resolved.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(r container.Resolver) any {
//	        return mail.NewSMTP(container.MustResolve[*config.Config](r, "config").Mail)
//	    })
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(r container.Resolver) any {
//	        return heavySetup() // only called on first Get("heavy")
//	    })
//	}
package container
