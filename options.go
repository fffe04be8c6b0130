package parlance

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/aretw0/parlance/pkg/runner"
)

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = hooks
	}
}

// WithIO sets the conversation boundary. Defaults to a text handler on
// stdin and stdout.
func WithIO(h runner.IOHandler) Option {
	return func(a *Agent) {
		a.io = h
	}
}

// WithAuditDir writes a timestamped audit log into dir for every run.
func WithAuditDir(dir string) Option {
	return func(a *Agent) {
		a.auditDir = dir
	}
}

// WithAuditWriter writes the audit log to w. It takes precedence over
// WithAuditDir.
func WithAuditWriter(w io.Writer) Option {
	return func(a *Agent) {
		a.auditWriter = w
	}
}

// WithActionTimeout bounds every action dispatch.
func WithActionTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.actionTimeout = d
	}
}

// WithModelTimeout bounds every model call.
func WithModelTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.modelTimeout = d
	}
}

// WithMaxTokens overrides the completion budget of every model call.
func WithMaxTokens(n int) Option {
	return func(a *Agent) {
		a.maxTokens = n
	}
}

// WithStore persists the session after every iteration. Combined with
// WithSessionID, a stored session is resumed instead of started.
func WithStore(s ports.SessionStore) Option {
	return func(a *Agent) {
		a.store = s
	}
}

// WithLocker holds a lock on the session for the duration of Run.
func WithLocker(l ports.SessionLocker, ttl time.Duration) Option {
	return func(a *Agent) {
		a.locker = l
		a.lockTTL = ttl
	}
}

// WithSessionID names the session driven by Run.
func WithSessionID(id string) Option {
	return func(a *Agent) {
		a.sessionID = id
	}
}

// WithStrictConfig makes New fail when the configuration does not validate.
// Without it, problems are logged as warnings.
func WithStrictConfig() Option {
	return func(a *Agent) {
		a.strict = true
	}
}

// WithMaxIterations bounds a single Run. Zero means unlimited.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		a.maxIterations = n
	}
}
