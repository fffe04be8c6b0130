package parlance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/parlance/internal/audit"
	"github.com/aretw0/parlance/internal/logging"
	"github.com/aretw0/parlance/internal/runtime"
	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/model"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/aretw0/parlance/pkg/registry"
	"github.com/aretw0/parlance/pkg/runner"
	"github.com/google/uuid"
)

// DefaultLockTTL is used by WithLocker when ttl is zero.
const DefaultLockTTL = 5 * time.Minute

// ErrSessionClosed is returned when resuming a session that already ended.
var ErrSessionClosed = errors.New("session already terminated")

// Outcome summarizes a Run.
type Outcome = runtime.Outcome

// StopReason explains why Run returned.
type StopReason = runtime.StopReason

const (
	ReasonTerminal       = runtime.ReasonTerminal
	ReasonInputClosed    = runtime.ReasonInputClosed
	ReasonCanceled       = runtime.ReasonCanceled
	ReasonIterationLimit = runtime.ReasonIterationLimit
	ReasonFailed         = runtime.ReasonFailed
)

// Agent is the high-level entry point: a loaded configuration, a model
// client and the registered actions.
type Agent struct {
	cfg     *config.Config
	client  model.Client
	actions *registry.Registry
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	io      runner.IOHandler

	auditDir      string
	auditWriter   io.Writer
	actionTimeout time.Duration
	modelTimeout  time.Duration
	maxTokens     int
	store         ports.SessionStore
	locker        ports.SessionLocker
	lockTTL       time.Duration
	sessionID     string
	strict        bool
	maxIterations int
}

// New loads the configuration at configPath and creates an agent.
func New(configPath string, client model.Client, opts ...Option) (*Agent, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, client, opts...)
}

// NewFromConfig creates an agent from an already parsed configuration.
func NewFromConfig(cfg *config.Config, client model.Client, opts ...Option) (*Agent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is nil", domain.ErrConfig)
	}
	a := &Agent{cfg: cfg, client: client}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.io == nil {
		a.io = runner.NewTextHandler(os.Stdin, os.Stdout)
	}
	if a.lockTTL <= 0 {
		a.lockTTL = DefaultLockTTL
	}
	a.actions = registry.New(registry.WithTimeout(a.actionTimeout))

	if err := cfg.Validate(); err != nil {
		if a.strict {
			return nil, err
		}
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				a.logger.Warn("configuration problem", "problem", p)
			}
		}
	}
	return a, nil
}

// Config returns the loaded configuration.
func (a *Agent) Config() *config.Config { return a.cfg }

// Actions returns the action registry.
func (a *Agent) Actions() *registry.Registry { return a.actions }

// RegisterAction makes action available under name. A later registration
// under the same name replaces the earlier one.
func (a *Agent) RegisterAction(name string, action registry.Action) {
	a.actions.Register(name, action)
}

// RegisterActionFunc registers a plain function as an action.
func (a *Agent) RegisterActionFunc(name string, fn registry.ActionFunc) {
	a.actions.Register(name, fn)
}

// Run drives the conversation until it halts. initialInput, when non-empty,
// is recorded as the first user turn.
// Without WithSessionID every Run starts a new session with a random ID.
func (a *Agent) Run(ctx context.Context, initialInput string) (Outcome, error) {
	id := a.sessionID
	if id == "" {
		id = uuid.NewString()
	}
	failed := Outcome{SessionID: id, Reason: ReasonFailed}

	if a.locker != nil {
		unlock, err := a.locker.Lock(ctx, id, a.lockTTL)
		if err != nil {
			return failed, fmt.Errorf("failed to lock session: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				a.logger.Warn("failed to release session lock", "session_id", id, "err", err)
			}
		}()
	}

	session, err := a.resume(ctx, id)
	if err != nil {
		return failed, err
	}

	trail, closeTrail, err := a.openAudit()
	if err != nil {
		return failed, err
	}
	defer closeTrail()

	invoker := model.NewInvoker(a.client,
		model.WithLogger(a.logger),
		model.WithTimeout(a.modelTimeout),
		model.WithMaxTokens(a.maxTokens),
	)

	opts := []runtime.Option{
		runtime.WithLogger(a.logger),
		runtime.WithLifecycleHooks(a.hooks),
		runtime.WithActions(a.actions),
		runtime.WithSink(a.io),
		runtime.WithInput(a.io),
		runtime.WithAudit(trail),
		runtime.WithMaxIterations(a.maxIterations),
		runtime.WithSessionID(id),
	}
	if a.store != nil {
		opts = append(opts, runtime.WithStore(a.store))
	}
	if session != nil {
		opts = append(opts, runtime.WithSession(session))
	}

	engine := runtime.NewEngine(a.cfg, invoker, opts...)
	return engine.Run(ctx, initialInput)
}

// resume loads the stored session id, if any.
func (a *Agent) resume(ctx context.Context, id string) (*runtime.Session, error) {
	if a.store == nil {
		return nil, nil
	}
	snap, err := a.store.Load(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if snap.Status == domain.StatusTerminated {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, id)
	}
	a.logger.Info("resuming session", "session_id", snap.SessionID, "state", snap.CurrentState)
	return runtime.RestoreSession(snap), nil
}

func (a *Agent) openAudit() (runtime.AuditTrail, func(), error) {
	switch {
	case a.auditWriter != nil:
		l := audit.New(a.auditWriter)
		return l, func() { _ = l.Close() }, nil
	case a.auditDir != "":
		l, err := audit.Create(a.auditDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create audit log: %w", err)
		}
		a.logger.Info("audit log", "path", l.Path())
		return l, func() {
			if err := l.Close(); err != nil {
				a.logger.Warn("failed to close audit log", "err", err)
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}
