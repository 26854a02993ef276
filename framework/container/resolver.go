package container

// Args maps constructor parameter names to override values. Passed to
// GetWith and handed to factories verbatim.
type Args map[string]any

// Factory builds the value for an id. r resolves further dependencies as
// part of the same resolution chain, so cycles through factories are
// detected; args holds the overrides given to GetWith or GetFresh, or nil.
type Factory func(r Resolver, args Args) (any, error)

// Resolver is the read side of the container, the shape of a PSR-11 style
// service locator.
type Resolver interface {
	Has(id string) bool
	Get(id string) (any, error)
	GetWith(id string, args Args) (any, error)
}

// resolution is the Resolver handed to factories: it carries the chain of
// ids currently being resolved.
type resolution struct {
	c     *Container
	stack []string
}

func (r *resolution) Has(id string) bool { return r.c.Has(id) }

func (r *resolution) Get(id string) (any, error) { return r.c.resolve(id, requestOf(nil), r.stack) }

func (r *resolution) GetWith(id string, values Args) (any, error) {
	return r.c.resolve(id, requestOf(values), r.stack)
}
