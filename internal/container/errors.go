package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	// ErrServiceNotFound is returned when a requested type has no
	// registration in the container.
	ErrServiceNotFound = errors.New("container: service not found")

	// ErrCircularDependency is returned when the resolution stack revisits
	// a type. The wrapping error message carries the full dependency chain.
	ErrCircularDependency = errors.New("container: circular dependency")

	// ErrAlreadyRegistered is returned when a type is registered twice.
	ErrAlreadyRegistered = errors.New("container: service already registered")

	// ErrScopeClosed is returned when resolving from a closed scope or
	// container.
	ErrScopeClosed = errors.New("container: scope closed")

	// ErrScopedOutsideScope is returned when a Scoped service is resolved
	// directly from the root container instead of through a Scope.
	ErrScopedOutsideScope = errors.New("container: scoped service resolved outside a scope")
)

// notFoundError wraps ErrServiceNotFound with the missing type's name.
func notFoundError(t reflect.Type) error {
	return fmt.Errorf("%w: %s", ErrServiceNotFound, typeName(t))
}

// cycleError wraps ErrCircularDependency with the resolution chain that
// produced the cycle, e.g. "*app.A -> *app.B -> *app.A".
func cycleError(stack []reflect.Type) error {
	names := make([]string, 0, len(stack))
	for _, t := range stack {
		names = append(names, typeName(t))
	}
	return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(names, " -> "))
}

// typeName renders a reflect.Type in a stable, human-readable form.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
