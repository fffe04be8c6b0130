package runtime

import (
	"log/slog"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/aretw0/parlance/pkg/registry"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithActions sets the action registry consulted for every decision.
func WithActions(r *registry.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.actions = r
		}
	}
}

// WithSink sets the output boundary.
func WithSink(s ports.MessageSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithInput sets the input boundary.
func WithInput(in ports.InputSource) Option {
	return func(e *Engine) {
		if in != nil {
			e.input = in
		}
	}
}

// WithStore persists a snapshot after every iteration and every input.
func WithStore(s ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithAudit sets the audit trail.
func WithAudit(a AuditTrail) Option {
	return func(e *Engine) {
		if a != nil {
			e.audit = a
		}
	}
}

// WithSession continues an existing session instead of starting a new one.
func WithSession(s *Session) Option {
	return func(e *Engine) {
		e.session = s
	}
}

// WithSessionID sets the ID of the session created by NewEngine.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithMaxIterations bounds the number of iterations of a single Run.
// Zero means unlimited.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIterations = n
	}
}
