// Package container provides the dependency-injection container that wires
// WriteIt's services. Services are registered by type with a lifetime
// (Singleton, Transient, or Scoped) and either a factory, a pre-built value,
// or a constructor auto-wired from its parameter types.
//
// Registration:
//
//	c := container.New()
//	container.ProvideValue(c, cfg)
//	container.Provide(c, container.Singleton, func(r container.Resolver) (ports.WorkspaceService, error) {
//	    repo, err := container.Resolve[ports.WorkspaceRepository](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return app.NewWorkspaceService(repo, logger), nil
//	})
//	_ = container.ProvideConstructor(c, container.Singleton, app.NewConfigService)
//
// Resolution:
//
//	svc, err := container.Resolve[ports.WorkspaceService](c)
//
// Resolution is recursive: factory and constructor dependencies are resolved
// from the same container. An unregistered type yields ErrServiceNotFound; a
// resolution stack that revisits a type yields ErrCircularDependency with
// the full chain in the message.
//
// Scoped lifetimes tie instances to a Scope; Scope.Close (and
// Container.Close for singletons) disposes instances in reverse construction
// order via the Disposer / ShutdownDisposer hooks.
package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Resolver resolves services by type. Implemented by *Container, *Scope, and
// the internal resolver handed to factories; callers use the generic
// Resolve/MustResolve helpers rather than this interface directly.
type Resolver interface {
	resolveType(t reflect.Type, stack []reflect.Type) (any, error)
}

// Disposer is implemented by services that release resources synchronously
// when their owning scope (or the root container) closes.
type Disposer interface {
	Dispose()
}

// ShutdownDisposer is implemented by services whose teardown can block or
// fail, e.g. flushing buffers or closing network listeners.
type ShutdownDisposer interface {
	Shutdown(ctx context.Context) error
}

// registration is the service descriptor stored per type: lifetime plus a
// build function. Singleton caching state lives here so that concurrent
// resolutions build at most one instance.
type registration struct {
	serviceType reflect.Type
	lifetime    Lifetime
	build       func(r Resolver) (any, error)

	once     sync.Once
	instance any
	buildErr error
}

// Container is the root service registry. Registration bookkeeping is
// guarded by a single mutex; resolution holds the lock only for map lookups
// so that recursive resolution cannot deadlock.
type Container struct {
	mu            sync.Mutex
	registrations map[reflect.Type]*registration
	disposables   []any
	closed        bool
}

// New creates an empty container.
func New() *Container {
	return &Container{
		registrations: make(map[reflect.Type]*registration),
	}
}

// Provide registers a factory for T under the given lifetime. The factory
// receives a Resolver bound to the current resolution, so dependencies it
// resolves participate in cycle detection.
// Returns ErrAlreadyRegistered if T is already registered.
func Provide[T any](c *Container, lifetime Lifetime, factory func(r Resolver) (T, error)) error {
	t := typeOf[T]()
	return c.register(&registration{
		serviceType: t,
		lifetime:    lifetime,
		build: func(r Resolver) (any, error) {
			return factory(r)
		},
	})
}

// ProvideValue registers a pre-built instance of T as a singleton.
// Returns ErrAlreadyRegistered if T is already registered.
func ProvideValue[T any](c *Container, value T) error {
	t := typeOf[T]()
	return c.register(&registration{
		serviceType: t,
		lifetime:    Singleton,
		build: func(Resolver) (any, error) {
			return value, nil
		},
	})
}

// MustProvide registers a factory and panics on registration error. Intended
// for wiring at startup where a duplicate registration is a programming bug.
func MustProvide[T any](c *Container, lifetime Lifetime, factory func(r Resolver) (T, error)) {
	if err := Provide(c, lifetime, factory); err != nil {
		panic(err)
	}
}

// MustProvideValue registers a pre-built instance and panics on error.
func MustProvideValue[T any](c *Container, value T) {
	if err := ProvideValue(c, value); err != nil {
		panic(err)
	}
}

// Resolve resolves T from the given resolver (a Container or a Scope),
// recursively building dependencies as needed.
func Resolve[T any](r Resolver) (T, error) {
	v, err := r.resolveType(typeOf[T](), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("container: registration for %s produced %T", typeOf[T](), v)
	}
	return typed, nil
}

// MustResolve resolves T and panics on failure. Intended for startup wiring
// where a missing registration is a programming bug.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// Registered reports whether T has a registration in the container.
func Registered[T any](c *Container) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.registrations[typeOf[T]()]
	return ok
}

// NewScope creates a child resolver with its own scoped-instance cache.
// The scope must be closed to dispose its instances.
func (c *Container) NewScope() *Scope {
	return &Scope{
		container: c,
		instances: make(map[reflect.Type]any),
	}
}

// Close disposes all singleton instances in reverse construction order and
// marks the container closed. Disposal errors are joined. Closing twice is
// a no-op.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	disposables := c.disposables
	c.disposables = nil
	c.mu.Unlock()

	return disposeAll(ctx, disposables)
}

// register stores a registration, rejecting duplicates and closed containers.
func (c *Container) register(reg *registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrScopeClosed
	}
	if _, dup := c.registrations[reg.serviceType]; dup {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, typeName(reg.serviceType))
	}
	c.registrations[reg.serviceType] = reg
	return nil
}

// resolveType implements Resolver for the root container (no scope).
func (c *Container) resolveType(t reflect.Type, stack []reflect.Type) (any, error) {
	return c.resolveIn(nil, t, stack)
}

// resolveIn is the resolution core shared by the container and its scopes.
// The stack carries the chain of types currently being built; revisiting a
// type on the stack is a cycle.
func (c *Container) resolveIn(s *Scope, t reflect.Type, stack []reflect.Type) (any, error) {
	for _, onStack := range stack {
		if onStack == t {
			return nil, cycleError(append(stack, t))
		}
	}
	stack = append(stack, t)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrScopeClosed
	}
	reg, ok := c.registrations[t]
	c.mu.Unlock()
	if !ok {
		return nil, notFoundError(t)
	}

	r := &boundResolver{container: c, scope: s, stack: stack}

	switch reg.lifetime {
	case Singleton:
		return c.resolveSingleton(reg, r)
	case Scoped:
		if s == nil {
			return nil, fmt.Errorf("%w: %s", ErrScopedOutsideScope, typeName(t))
		}
		return s.resolveScoped(reg, r)
	default: // Transient
		return reg.build(r)
	}
}

// resolveSingleton builds the instance at most once. The build runs outside
// the container mutex; recursive dependencies use their own registrations'
// once guards, and cycles are caught by the stack before re-entry.
func (c *Container) resolveSingleton(reg *registration, r Resolver) (any, error) {
	reg.once.Do(func() {
		reg.instance, reg.buildErr = reg.build(r)
		if reg.buildErr == nil {
			c.trackDisposable(reg.instance)
		}
	})
	return reg.instance, reg.buildErr
}

// trackDisposable records an instance for reverse-order disposal on Close if
// it implements a disposal hook.
func (c *Container) trackDisposable(instance any) {
	if !isDisposable(instance) {
		return
	}
	c.mu.Lock()
	c.disposables = append(c.disposables, instance)
	c.mu.Unlock()
}

// boundResolver carries the in-flight resolution stack into factories so
// that nested Resolve calls participate in cycle detection and reuse the
// originating scope.
type boundResolver struct {
	container *Container
	scope     *Scope
	stack     []reflect.Type
}

func (b *boundResolver) resolveType(t reflect.Type, _ []reflect.Type) (any, error) {
	return b.container.resolveIn(b.scope, t, b.stack)
}

// isDisposable reports whether an instance implements a disposal hook.
func isDisposable(instance any) bool {
	switch instance.(type) {
	case Disposer, ShutdownDisposer:
		return true
	default:
		return false
	}
}

// disposeAll invokes disposal hooks in reverse construction order, joining
// any Shutdown errors.
func disposeAll(ctx context.Context, disposables []any) error {
	var errs []error
	for i := len(disposables) - 1; i >= 0; i-- {
		switch d := disposables[i].(type) {
		case ShutdownDisposer:
			if err := d.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %T: %w", d, err))
			}
		case Disposer:
			d.Dispose()
		}
	}
	return errors.Join(errs...)
}

// typeOf returns the reflect.Type for T, preserving interface types (a plain
// reflect.TypeOf on an interface value would yield the dynamic type).
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
