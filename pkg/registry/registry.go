// Package registry maps action names to callable capabilities.
package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/parlance/pkg/domain"
)

// Action is a named capability the model can request.
// Invoke receives the model's action parameters verbatim.
type Action interface {
	Invoke(ctx context.Context, params map[string]any) (any, error)
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(ctx context.Context, params map[string]any) (any, error)

// Invoke calls f.
func (f ActionFunc) Invoke(ctx context.Context, params map[string]any) (any, error) {
	return f(ctx, params)
}

// Registry manages the available actions.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
	timeout time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeout bounds every dispatch. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{actions: make(map[string]Action)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = a
}

// RegisterFunc registers fn under name.
func (r *Registry) RegisterFunc(name string, fn ActionFunc) {
	r.Register(name, fn)
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered action names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch runs the action registered under name.
// Failures, panics and timeouts are returned as *domain.ActionDispatchError.
// Dispatching an unknown name is also an error; callers that treat unknown
// names as a no-op check Has first.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (any, error) {
	a, ok := r.Lookup(name)
	if !ok {
		return nil, &domain.ActionDispatchError{Action: name, Err: fmt.Errorf("action not registered")}
	}

	if r.timeout <= 0 {
		res, err := invoke(ctx, a, params)
		if err != nil {
			return nil, &domain.ActionDispatchError{Action: name, Err: err}
		}
		return res, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		val any
		err error
	}
	done := make(chan result, 1)
	go func() {
		val, err := invoke(ctx, a, params)
		done <- result{val, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, &domain.ActionDispatchError{Action: name, Err: res.err}
		}
		return res.val, nil
	case <-ctx.Done():
		return nil, &domain.ActionDispatchError{Action: name, Err: fmt.Errorf("timed out after %s: %w", r.timeout, ctx.Err())}
	}
}

func invoke(ctx context.Context, a Action, params map[string]any) (res any, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return a.Invoke(ctx, params)
}
