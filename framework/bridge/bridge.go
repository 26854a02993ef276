// Package bridge connects a Container to a samber/do injector so that both
// can serve each other's services while a codebase uses the two side by side.
package bridge

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/km-arc/go-autowire/framework/container"
)

// Bridge pairs a container with a do root scope.
type Bridge struct {
	container *container.Container
	injector  *do.RootScope
}

// New creates a bridge. A nil injector gets a fresh do.New().
func New(c *container.Container, injector *do.RootScope) *Bridge {
	if injector == nil {
		injector = do.New()
	}
	return &Bridge{container: c, injector: injector}
}

// Container returns the bridged container.
func (b *Bridge) Container() *container.Container { return b.container }

// Injector returns the bridged do injector.
func (b *Bridge) Injector() *do.RootScope { return b.injector }

// HealthCheck runs the health checks of the do services built so far. The
// map holds one entry per checked service, nil when it is healthy.
func (b *Bridge) HealthCheck() map[string]error {
	return b.injector.HealthCheck()
}

// ── container → do ────────────────────────────────────────────────────────────

// Expose provides T to do by resolving id from the container. do invokes the
// provider once and keeps the result, whatever the id's share policy is.
//
//	bridge.Expose[*config.Config](b, "config")
//	cfg, err := do.Invoke[*config.Config](b.Injector())
func Expose[T any](b *Bridge, id string) {
	do.Provide(b.injector, fromContainer[T](b.container, id))
}

// ExposeNamed is Expose under a do service name.
func ExposeNamed[T any](b *Bridge, name, id string) {
	do.ProvideNamed(b.injector, name, fromContainer[T](b.container, id))
}

func fromContainer[T any](c *container.Container, id string) func(do.Injector) (T, error) {
	return func(do.Injector) (T, error) {
		v, err := container.Resolve[T](c, id)
		if err != nil {
			var zero T
			return zero, fmt.Errorf("bridge: container [%s]: %w", id, err)
		}
		return v, nil
	}
}

// ── do → container ────────────────────────────────────────────────────────────

// Import binds id in the container to the do service of type T.
//
//	do.ProvideValue(injector, db)
//	bridge.Import[*sql.DB](b, "db")
func Import[T any](b *Bridge, id string, opts ...container.SetOption) {
	injector := b.injector
	b.container.Set(id, func(container.Resolver, container.Args) (any, error) {
		return do.Invoke[T](injector)
	}, opts...)
}

// ImportNamed binds id to the do service registered under name.
func ImportNamed[T any](b *Bridge, id, name string, opts ...container.SetOption) {
	injector := b.injector
	b.container.Set(id, func(container.Resolver, container.Args) (any, error) {
		return do.InvokeNamed[T](injector, name)
	}, opts...)
}
