package container

import (
	"fmt"
	"reflect"
)

// errorType is the reflect.Type of the error interface, used to recognize
// constructor signatures of the form func(...) (T, error).
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ProvideConstructor registers a constructor function whose dependencies are
// auto-wired from its parameter types. The constructor must return either
// (T) or (T, error); it is registered under T, so returning an interface
// type registers the interface:
//
//	func NewConfigService(repo ports.WorkspaceRepository, logger *slog.Logger) ports.ConfigService
//	_ = container.ProvideConstructor(c, container.Singleton, NewConfigService)
//
// Each parameter is resolved from the container at build time; a missing
// parameter registration surfaces as ErrServiceNotFound when the service is
// first resolved, not at registration.
func ProvideConstructor(c *Container, lifetime Lifetime, ctor any) error {
	v := reflect.ValueOf(ctor)
	t := v.Type()

	if t.Kind() != reflect.Func {
		return fmt.Errorf("container: constructor must be a function, got %T", ctor)
	}
	if t.IsVariadic() {
		return fmt.Errorf("container: variadic constructors are not supported: %s", t)
	}

	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return fmt.Errorf("container: constructor %s returns only an error", t)
		}
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("container: constructor %s second result must be error, got %s", t, t.Out(1))
		}
	default:
		return fmt.Errorf("container: constructor %s must return (T) or (T, error)", t)
	}

	serviceType := t.Out(0)

	return c.register(&registration{
		serviceType: serviceType,
		lifetime:    lifetime,
		build: func(r Resolver) (any, error) {
			args := make([]reflect.Value, t.NumIn())
			for i := range args {
				dep, err := r.resolveType(t.In(i), nil)
				if err != nil {
					return nil, fmt.Errorf("wiring %s parameter %d (%s): %w",
						typeName(serviceType), i, typeName(t.In(i)), err)
				}
				args[i] = depValue(dep, t.In(i))
			}

			out := v.Call(args)
			if len(out) == 2 && !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}
			return out[0].Interface(), nil
		},
	})
}

// MustProvideConstructor registers a constructor and panics on a malformed
// signature or duplicate registration.
func MustProvideConstructor(c *Container, lifetime Lifetime, ctor any) {
	if err := ProvideConstructor(c, lifetime, ctor); err != nil {
		panic(err)
	}
}

// depValue converts a resolved dependency to a reflect.Value of the
// parameter type. A typed nil interface needs an explicit zero value.
func depValue(dep any, paramType reflect.Type) reflect.Value {
	if dep == nil {
		return reflect.Zero(paramType)
	}
	return reflect.ValueOf(dep).Convert(paramType)
}
