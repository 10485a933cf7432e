package container

import (
	"context"
	"reflect"
	"sync"
)

// Scope is a child resolver whose Scoped instances live exactly as long as
// the scope. Typical usage is one scope per CLI invocation or per background
// job:
//
//	scope := c.NewScope()
//	defer scope.Close(ctx)
//	svc, err := container.Resolve[ports.PipelineService](scope)
//
// Singleton and Transient resolutions pass through to the root container.
type Scope struct {
	container *Container

	mu          sync.Mutex
	instances   map[reflect.Type]any
	disposables []any
	closed      bool
}

// resolveType implements Resolver.
func (s *Scope) resolveType(t reflect.Type, stack []reflect.Type) (any, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrScopeClosed
	}
	return s.container.resolveIn(s, t, stack)
}

// resolveScoped returns the cached instance for the registration or builds
// one. The build runs outside the scope mutex; a concurrent build of the
// same type is resolved by keeping the first stored instance.
func (s *Scope) resolveScoped(reg *registration, r Resolver) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrScopeClosed
	}
	if instance, ok := s.instances[reg.serviceType]; ok {
		s.mu.Unlock()
		return instance, nil
	}
	s.mu.Unlock()

	instance, err := reg.build(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// Lost the race with Close; dispose the orphan immediately.
		_ = disposeAll(context.Background(), []any{instance})
		return nil, ErrScopeClosed
	}
	if existing, ok := s.instances[reg.serviceType]; ok {
		return existing, nil
	}
	s.instances[reg.serviceType] = instance
	if isDisposable(instance) {
		s.disposables = append(s.disposables, instance)
	}
	return instance, nil
}

// Close disposes the scope's instances in reverse construction order and
// marks the scope closed. Disposal errors are joined. Closing twice is a
// no-op. Singletons are not disposed here; they belong to the container.
func (s *Scope) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	disposables := s.disposables
	s.disposables = nil
	s.instances = nil
	s.mu.Unlock()

	return disposeAll(ctx, disposables)
}
