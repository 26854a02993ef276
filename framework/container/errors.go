package container

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrNotFound            = errors.New("container: identifier not found")
	ErrResolution          = errors.New("container: resolution failed")
	ErrUnresolvedParameter = errors.New("container: unresolved parameter")
	ErrCircularDependency  = errors.New("container: circular dependency")
)

// Declaration errors returned by the Catalog.
var (
	ErrInvalidConstructor = errors.New("container: constructor must be a non-variadic func returning (T) or (T, error)")
	ErrNotInstantiable    = errors.New("container: type is not instantiable")
	ErrAlreadyDeclared    = errors.New("container: identifier already declared")
	ErrInvalidDefault     = errors.New("container: default value does not fit parameter type")
)

// NotFoundError is returned when an id has no factory and names no declared type.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: [%s] is not bound and is not a declared type, it cannot be resolved", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ResolutionError wraps a failure raised by a factory, a constructor or a
// post-construction callback.
type ResolutionError struct {
	ID  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("container: resolving [%s]: %v", e.ID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// UnresolvedParameterError is returned when a constructor parameter could not
// be satisfied by an override, the container, a default or optionality.
// Cause holds the failed recursive resolution, if there was one.
type UnresolvedParameterError struct {
	ID    string
	Owner string
	Param string
	Type  string
	Cause error
}

func (e *UnresolvedParameterError) Error() string {
	msg := fmt.Sprintf("container: unable to resolve a value for parameter (%s %s) in [%s] while resolving [%s]",
		e.Type, e.Param, e.Owner, e.ID)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UnresolvedParameterError) Unwrap() error { return e.Cause }

func (e *UnresolvedParameterError) Is(target error) bool { return target == ErrUnresolvedParameter }

// CircularDependencyError reports an id that was requested while it was
// already being resolved. Path ends with the repeated id.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency " + strings.Join(e.Path, " -> ")
}

func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// IsNotFound reports whether err means the requested id itself is unknown.
// Unlike errors.Is(err, ErrNotFound) it stops at the first container error,
// so a registered id failing on a missing dependency is not reported.
func IsNotFound(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		switch err.(type) {
		case *NotFoundError:
			return true
		case *ResolutionError, *UnresolvedParameterError, *CircularDependencyError:
			return false
		}
	}
	return false
}
