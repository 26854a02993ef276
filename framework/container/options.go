package container

import "go.uber.org/zap"

// Option configures a Container at construction.
type Option func(*Container)

// WithCatalog sets the catalog of declared types (default: DefaultCatalog).
func WithCatalog(k *Catalog) Option {
	return func(c *Container) { c.catalog = k }
}

// WithDefaultShared sets the share policy of ids that have none of their own.
// The default is true: resolved values are cached unless NoShare is called.
func WithDefaultShared(shared bool) Option {
	return func(c *Container) { c.defaultShared = shared }
}

// WithLogger sets the logger used for registration events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the observer notified after every resolution.
func WithObserver(o Observer) Option {
	return func(c *Container) { c.observer = o }
}

// SetOption adjusts the share policy of an id registered with Set.
type SetOption func(*setOptions)

type setOptions struct {
	shared *bool
}

// AsShared caches the factory's result.
func AsShared() SetOption {
	return func(o *setOptions) {
		v := true
		o.shared = &v
	}
}

// AsTransient invokes the factory on every resolution.
func AsTransient() SetOption {
	return func(o *setOptions) {
		v := false
		o.shared = &v
	}
}
