package container

import (
	"fmt"
	"reflect"
)

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result.
//
//	// Instead of: v, err := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](r Resolver, id string) (T, error) {
	return ResolveWith[T](r, id, nil)
}

// ResolveWith is Resolve with named-argument overrides.
func ResolveWith[T any](r Resolver, id string, args Args) (T, error) {
	var zero T
	v, err := r.GetWith(id, args)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &ResolutionError{
			ID:  id,
			Err: fmt.Errorf("resolved to %T, want %s", v, reflect.TypeFor[T]()),
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Meant for bootstrap code
// where a missing binding is a programming error.
func MustResolve[T any](r Resolver, id string) T {
	v, err := Resolve[T](r, id)
	if err != nil {
		panic(err)
	}
	return v
}

// Make resolves the id KeyOf[T]() names.
//
//	svc, err := container.Make[*Service](c)
func Make[T any](r Resolver) (T, error) {
	return Resolve[T](r, KeyOf[T]())
}
