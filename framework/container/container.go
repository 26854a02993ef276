package container

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container maps string ids to factories or declared types and resolves them,
// auto-wiring constructor parameters through itself.
//
// It supports:
//   - Set / Bind / Singleton / Instance
//   - Has / Get / GetWith (named-argument overrides) / GetFresh
//   - Share / NoShare (per-id caching policy)
//   - Callback / AfterResolving (post-construction hooks)
//   - Bindings / Describe / Forget / Flush
type Container struct {
	mu sync.RWMutex

	catalog       *Catalog
	defaultShared bool
	logger        *zap.Logger
	observer      Observer

	// id → factory
	factories map[string]Factory

	// id → cached values of a shared id, one per distinct argument set
	instances map[string][]entry

	// id → explicit share policy
	shared map[string]bool

	// id → invalidation counter; epoch counts Flush calls
	generations map[string]uint64
	epoch       uint64

	// id → post-construction hook
	callbacks map[string]func(any)

	afterResolving []func(string, any)

	// id → reflected declaration, filled on first auto-wiring
	meta map[string]*typeMeta
}

// New creates a container. Like Laravel, the container is bound to itself
// under "container".
func New(opts ...Option) *Container {
	c := &Container{
		catalog:       DefaultCatalog,
		defaultShared: true,
		logger:        zap.NewNop(),
		factories:     make(map[string]Factory),
		instances:     make(map[string][]entry),
		shared:        make(map[string]bool),
		generations:   make(map[string]uint64),
		callbacks:     make(map[string]func(any)),
		meta:          make(map[string]*typeMeta),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Instance("container", c)
	return c
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger { return c.logger }

// ── Registration ──────────────────────────────────────────────────────────────

// Set registers or replaces the factory for id and drops any cached value.
// Without options the id keeps its current share policy.
//
//	c.Set("mailer", func(r container.Resolver, args container.Args) (any, error) {
//	    return mail.NewSMTP(args["host"].(string))
//	}, container.AsTransient())
func (c *Container) Set(id string, factory Factory, opts ...SetOption) *Container {
	if factory == nil {
		panic(fmt.Sprintf("container: nil factory for [%s]", id))
	}
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	c.factories[id] = factory
	c.evictLocked(id)
	if o.shared != nil {
		c.shared[id] = *o.shared
	}
	shared := c.isSharedLocked(id)
	c.mu.Unlock()

	c.logger.Debug("binding registered", zap.String("id", id), zap.Bool("shared", shared))
	return c
}

// Bind registers a transient factory.
//
//	c.Bind("request.id", func(r container.Resolver) any { return uuid() })
func (c *Container) Bind(id string, fn func(r Resolver) any) *Container {
	return c.Set(id, adapt(fn), AsTransient())
}

// Singleton registers a factory whose result is cached after first resolution.
func (c *Container) Singleton(id string, fn func(r Resolver) any) *Container {
	return c.Set(id, adapt(fn), AsShared())
}

// Instance registers a pre-built value.
func (c *Container) Instance(id string, instance any) *Container {
	return c.Set(id, func(Resolver, Args) (any, error) { return instance, nil }, AsShared())
}

func adapt(fn func(r Resolver) any) Factory {
	if fn == nil {
		return nil
	}
	return func(r Resolver, _ Args) (any, error) { return fn(r), nil }
}

// Share marks id as shared: its next resolved value is cached.
func (c *Container) Share(id string) *Container {
	c.mu.Lock()
	c.shared[id] = true
	c.mu.Unlock()

	c.logger.Debug("binding shared", zap.String("id", id))
	return c
}

// NoShare marks id as transient and evicts its cached value, so a stale
// instance is never served after the demotion.
func (c *Container) NoShare(id string) *Container {
	c.mu.Lock()
	c.shared[id] = false
	c.evictLocked(id)
	c.mu.Unlock()

	c.logger.Debug("binding unshared", zap.String("id", id))
	return c
}

// Callback sets the hook run on every freshly constructed value of id,
// before it is cached. A panicking hook fails the resolution.
func (c *Container) Callback(id string, fn func(instance any)) *Container {
	c.mu.Lock()
	if fn == nil {
		delete(c.callbacks, id)
	} else {
		c.callbacks[id] = fn
	}
	c.mu.Unlock()
	return c
}

// AfterResolving registers a hook fired after any id is freshly constructed.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(fn func(id string, instance any)) *Container {
	c.mu.Lock()
	c.afterResolving = append(c.afterResolving, fn)
	c.mu.Unlock()
	return c
}

// Forget removes the factory, policy, hook and cached value of id.
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(id string) {
	c.mu.Lock()
	delete(c.factories, id)
	delete(c.shared, id)
	delete(c.callbacks, id)
	c.evictLocked(id)
	c.mu.Unlock()

	c.logger.Debug("binding forgotten", zap.String("id", id))
}

// Flush resets every registration and cache. Reflected type metadata is kept:
// declarations never change.
func (c *Container) Flush() {
	c.mu.Lock()
	c.factories = make(map[string]Factory)
	c.instances = make(map[string][]entry)
	c.shared = make(map[string]bool)
	c.callbacks = make(map[string]func(any))
	c.afterResolving = nil
	c.epoch++
	c.mu.Unlock()

	c.logger.Debug("container flushed")
}

// evictLocked drops the cached value of id and invalidates any resolution of
// id that is still running (must hold mu.Lock).
func (c *Container) evictLocked(id string) {
	delete(c.instances, id)
	c.generations[id]++
}

func (c *Container) generation(id string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[id]
}

func (c *Container) isSharedLocked(id string) bool {
	if s, ok := c.shared[id]; ok {
		return s
	}
	return c.defaultShared
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Has reports whether id has a factory or names a declared type.
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	_, ok := c.factories[id]
	c.mu.RUnlock()
	return ok || c.catalog.Instantiable(id)
}

// Get resolves id.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Get("UserRepository")
func (c *Container) Get(id string) (any, error) {
	return c.resolve(id, requestOf(nil), nil)
}

// GetWith resolves id with named-argument overrides. Overrides apply to id
// only, not to its dependencies. A shared id caches one value per distinct
// set of overrides, apart from its plain Get value; overrides holding
// incomparable values (slices, maps, funcs) are never cached.
//
//	svc, err := c.GetWith(container.TypeKey((*Service)(nil)), container.Args{"name": "custom"})
func (c *Container) GetWith(id string, args Args) (any, error) {
	return c.resolve(id, requestOf(args), nil)
}

// GetFresh resolves id with overrides, skipping the cache. When id is shared
// the new value replaces the one cached for the same overrides.
//
//	// Laravel: $app->forgetInstance('mailer'); $app->make('mailer')
//	mailer, err := c.GetFresh("mailer", nil)
func (c *Container) GetFresh(id string, args Args) (any, error) {
	a := requestOf(args)
	a.fresh = true
	return c.resolve(id, a, nil)
}

// token identifies the registration state a resolution started from.
type token struct {
	epoch, generation uint64
}

// request is one call's overrides and their cache key.
type request struct {
	values    Args
	key       argKey
	cacheable bool
	fresh     bool
}

func requestOf(values Args) request {
	key, ok := keyOf(values)
	return request{values: values, key: key, cacheable: ok}
}

func (c *Container) resolve(id string, a request, stack []string) (v any, err error) {
	start := time.Now()
	outcome := OutcomeBuilt
	defer func() {
		if err != nil {
			outcome = OutcomeFailed
		}
		if c.observer != nil {
			c.observer.Observe(Event{ID: id, Outcome: outcome, Duration: time.Since(start), Err: err})
		}
	}()

	if slices.Contains(stack, id) {
		path := append(slices.Clone(stack), id)
		return nil, &CircularDependencyError{Path: path}
	}

	c.mu.RLock()
	if a.cacheable && !a.fresh && c.isSharedLocked(id) {
		if i, ok := find(c.instances[id], a.key); ok {
			inst := c.instances[id][i].value
			c.mu.RUnlock()
			outcome = OutcomeCached
			return inst, nil
		}
	}
	factory, hasFactory := c.factories[id]
	tok := token{epoch: c.epoch, generation: c.generations[id]}
	c.mu.RUnlock()

	r := &resolution{c: c, stack: append(slices.Clone(stack), id)}

	switch {
	case hasFactory:
		v, err = c.protect(id, func() (any, error) { return factory(r, a.values) })
	case c.catalog.Instantiable(id):
		v, err = c.construct(id, a.values, r)
	default:
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}

	if err = c.fireCallbacks(id, v); err != nil {
		return nil, err
	}
	if !a.cacheable {
		return v, nil
	}
	return c.store(id, a.key, v, tok, a.fresh), nil
}

// protect runs fn and turns its error or panic into a *ResolutionError.
func (c *Container) protect(id string, fn func() (any, error)) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, &ResolutionError{ID: id, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	v, err = fn()
	if err != nil {
		return nil, &ResolutionError{ID: id, Err: err}
	}
	return v, nil
}

// store caches v under id and key when id is still shared and nothing
// invalidated it since the resolution started. If another resolution cached
// first its value wins, unless replace is set.
func (c *Container) store(id string, key argKey, v any, tok token, replace bool) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isSharedLocked(id) || c.epoch != tok.epoch || c.generations[id] != tok.generation {
		return v
	}
	entries := c.instances[id]
	if i, ok := find(entries, key); ok {
		if !replace {
			return entries[i].value
		}
		entries[i].value = v
		return v
	}
	c.instances[id] = append(entries, entry{args: key, value: v})
	return v
}

func (c *Container) fireCallbacks(id string, v any) error {
	c.mu.RLock()
	cb := c.callbacks[id]
	global := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	if cb == nil && len(global) == 0 {
		return nil
	}
	_, err := c.protect(id, func() (any, error) {
		if cb != nil {
			cb(v)
		}
		for _, fn := range global {
			fn(id, v)
		}
		return v, nil
	})
	return err
}

// ── Auto-wiring ───────────────────────────────────────────────────────────────

// metadata returns the reflected declaration of id, reflecting it on first use.
func (c *Container) metadata(id string) (*typeMeta, error) {
	c.mu.RLock()
	m, ok := c.meta[id]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	d, ok := c.catalog.lookup(id)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	m, err := inspect(d)
	if err != nil {
		return nil, &ResolutionError{ID: id, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.meta[id]; ok {
		return existing, nil
	}
	c.meta[id] = m
	return m, nil
}

// construct instantiates a declared type, resolving each parameter in order.
func (c *Container) construct(id string, args Args, r *resolution) (any, error) {
	m, err := c.metadata(id)
	if err != nil {
		return nil, err
	}
	in := make([]reflect.Value, len(m.params))
	for i := range m.params {
		v, err := c.argument(m, &m.params[i], args, r)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}
	return c.protect(id, func() (any, error) { return m.build(in) })
}

// argument resolves one parameter: override, container, default, optional.
func (c *Container) argument(m *typeMeta, p *parameter, args Args, r *resolution) (reflect.Value, error) {
	if v, ok := args[p.name]; ok {
		rv, err := valueOf(v, p.typ)
		if err != nil {
			return reflect.Value{}, &ResolutionError{ID: m.id, Err: fmt.Errorf("argument %s: %w", p.name, err)}
		}
		return rv, nil
	}

	var cause error
	if p.key != "" && r.Has(p.key) {
		v, err := r.Get(p.key)
		switch {
		case err != nil:
			cause = err
		case v == nil || !reflect.TypeOf(v).AssignableTo(p.typ):
			cause = fmt.Errorf("[%s] resolved to %T, not %s", p.key, v, p.typ)
		default:
			return reflect.ValueOf(v), nil
		}
	}

	if p.hasDefault {
		return p.def, nil
	}
	if p.optional {
		return reflect.Zero(p.typ), nil
	}
	return reflect.Value{}, &UnresolvedParameterError{
		ID:    m.id,
		Owner: m.owner,
		Param: p.name,
		Type:  p.typ.String(),
		Cause: cause,
	}
}

// ── Inspection ────────────────────────────────────────────────────────────────

// Binding describes one resolvable id.
type Binding struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"` // "factory" or "type"
	Shared bool   `json:"shared"`
	Cached bool   `json:"cached"`
}

const (
	KindFactory = "factory"
	KindType    = "type"
)

// Bindings lists every factory and declared type, sorted by id.
func (c *Container) Bindings() []Binding {
	declared := c.catalog.IDs()

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Binding, 0, len(c.factories)+len(declared))
	for id := range c.factories {
		out = append(out, c.bindingLocked(id, KindFactory))
	}
	for _, id := range declared {
		if _, ok := c.factories[id]; !ok {
			out = append(out, c.bindingLocked(id, KindType))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Describe returns the Binding of id, or false if id is not resolvable.
func (c *Container) Describe(id string) (Binding, bool) {
	instantiable := c.catalog.Instantiable(id)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.factories[id]; ok {
		return c.bindingLocked(id, KindFactory), true
	}
	if instantiable {
		return c.bindingLocked(id, KindType), true
	}
	return Binding{}, false
}

func (c *Container) bindingLocked(id, kind string) Binding {
	_, cached := find(c.instances[id], nil)
	return Binding{ID: id, Kind: kind, Shared: c.isSharedLocked(id), Cached: cached}
}

// Resolved reports whether the plain Get value of id is currently cached.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := find(c.instances[id], nil)
	return ok
}
