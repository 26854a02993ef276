package container

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"sync"
)

// ── Parameters ────────────────────────────────────────────────────────────────

// Arg names one constructor parameter and optionally gives it a default or
// marks it optional. Go reflection cannot see parameter names, so they are
// declared next to the constructor:
//
//	container.MustDeclare(NewService,
//	    container.Param("logger"),
//	    container.Param("name").WithDefault("default"),
//	)
type Arg struct {
	name       string
	def        any
	hasDefault bool
	optional   bool
}

// Param starts an Arg for the named parameter.
func Param(name string) Arg {
	return Arg{name: name}
}

// WithDefault returns a copy of a carrying a default value.
func (a Arg) WithDefault(v any) Arg {
	a.def = v
	a.hasDefault = true
	return a
}

// AsOptional returns a copy of a that resolves to the zero value when nothing
// else satisfies it.
func (a Arg) AsOptional() Arg {
	a.optional = true
	return a
}

// ── Declarations ──────────────────────────────────────────────────────────────

// declaration is the raw, immutable description of an instantiable type.
// Exactly one of ctor / structType is set.
type declaration struct {
	id         string
	owner      string
	ctor       reflect.Value
	args       []Arg
	structType reflect.Type
	pointer    bool
}

// Catalog holds the types a container may instantiate on its own. It plays
// the role of the runtime's class table: a type is resolvable by id only
// once it has been declared here.
//
// A Catalog is safe for concurrent use and may be shared by many containers.
type Catalog struct {
	mu    sync.RWMutex
	decls map[string]*declaration
}

// DefaultCatalog is used by containers created without WithCatalog.
var DefaultCatalog = NewCatalog()

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{decls: make(map[string]*declaration)}
}

// Declare registers a constructor under the TypeKey of its return type and
// returns that id. The constructor must be a non-variadic func returning a
// concrete type, optionally followed by an error. args name the parameters
// in order; unnamed trailing parameters are called arg0, arg1, ...
func (k *Catalog) Declare(ctor any, args ...Arg) (string, error) {
	fn := reflect.ValueOf(ctor)
	if err := validateConstructor(fn, len(args)); err != nil {
		return "", err
	}
	id := typeKey(fn.Type().Out(0))
	return id, k.DeclareAs(id, ctor, args...)
}

// DeclareAs is Declare with an explicit id.
func (k *Catalog) DeclareAs(id string, ctor any, args ...Arg) error {
	fn := reflect.ValueOf(ctor)
	if err := validateConstructor(fn, len(args)); err != nil {
		return err
	}
	d := &declaration{
		id:    id,
		owner: funcName(fn),
		ctor:  fn,
		args:  append([]Arg(nil), args...),
	}
	return k.add(d)
}

// DeclareStruct registers a struct type whose exported fields are its
// parameters. v is a value or nil pointer of the type, e.g. (*Service)(nil);
// passing a pointer makes the container produce pointers. Fields are
// configured with tags:
//
//	type Service struct {
//	    Logger Logger        `inject:"logger"`
//	    Name   string        `inject:"name" default:"default"`
//	    Cache  *Cache        `inject:",optional"`
//	    Clock  func() time.Time `inject:"-"`
//	}
func (k *Catalog) DeclareStruct(v any) (string, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return "", fmt.Errorf("%w: nil", ErrNotInstantiable)
	}
	id := typeKey(t)
	return id, k.DeclareStructAs(id, v)
}

// DeclareStructAs is DeclareStruct with an explicit id.
func (k *Catalog) DeclareStructAs(id string, v any) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return fmt.Errorf("%w: nil", ErrNotInstantiable)
	}
	pointer := t.Kind() == reflect.Ptr
	st := t
	if pointer {
		st = t.Elem()
	}
	if st.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a struct", ErrNotInstantiable, t)
	}
	d := &declaration{
		id:         id,
		owner:      st.String(),
		structType: st,
		pointer:    pointer,
	}
	return k.add(d)
}

func (k *Catalog) add(d *declaration) error {
	// Reflect once up front so bad defaults and tags fail at declaration.
	if _, err := inspect(d); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.decls[d.id]; exists {
		return fmt.Errorf("%w: [%s]", ErrAlreadyDeclared, d.id)
	}
	k.decls[d.id] = d
	return nil
}

// Instantiable reports whether id names a declared type.
func (k *Catalog) Instantiable(id string) bool {
	_, ok := k.lookup(id)
	return ok
}

// IDs returns every declared id, sorted.
func (k *Catalog) IDs() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]string, 0, len(k.decls))
	for id := range k.decls {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (k *Catalog) lookup(id string) (*declaration, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	d, ok := k.decls[id]
	return d, ok
}

// MustDeclare declares ctor on DefaultCatalog and panics on error. Intended
// for package-level var blocks.
func MustDeclare(ctor any, args ...Arg) string {
	id, err := DefaultCatalog.Declare(ctor, args...)
	if err != nil {
		panic(err)
	}
	return id
}

// MustDeclareStruct declares a struct type on DefaultCatalog and panics on error.
func MustDeclareStruct(v any) string {
	id, err := DefaultCatalog.DeclareStruct(v)
	if err != nil {
		panic(err)
	}
	return id
}

// ── helpers ─────────────────────────────────────────────────────────────────

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func validateConstructor(fn reflect.Value, nargs int) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return ErrInvalidConstructor
	}
	t := fn.Type()
	if t.IsVariadic() {
		return fmt.Errorf("%w: %s is variadic", ErrInvalidConstructor, t)
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("%w: second result of %s is not error", ErrInvalidConstructor, t)
		}
	default:
		return fmt.Errorf("%w: %s returns %d values", ErrInvalidConstructor, t, t.NumOut())
	}
	if t.Out(0).Kind() == reflect.Interface {
		return fmt.Errorf("%w: %s returns interface %s", ErrNotInstantiable, t, t.Out(0))
	}
	if nargs > t.NumIn() {
		return fmt.Errorf("%w: %d args named for %s", ErrInvalidConstructor, nargs, t)
	}
	return nil
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		return f.Name()
	}
	return fn.Type().String()
}
