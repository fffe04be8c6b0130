// Package runtime drives a conversation through the configured state table.
//
// Every iteration makes one model call, emits one message, dispatches at most
// one action and takes one transition decision. The loop is single-threaded;
// the only suspension point is waiting for user input.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/parlance/internal/logging"
	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/model"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/aretw0/parlance/pkg/registry"
)

// Invoker produces one decision per call. *model.Invoker implements it.
type Invoker interface {
	Invoke(ctx context.Context, in model.Input) model.Outcome
}

// Engine is the conversational state machine.
type Engine struct {
	cfg     *config.Config
	invoker Invoker
	actions *registry.Registry
	sink    ports.MessageSink
	input   ports.InputSource
	store   ports.SessionStore
	audit   AuditTrail
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	session       *Session
	sessionID     string
	maxIterations int
}

// NewEngine creates an engine for cfg. Without WithSession a new session is
// started in the configured initial state.
func NewEngine(cfg *config.Config, invoker Invoker, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		invoker: invoker,
		actions: registry.New(),
		sink:    nopSink{},
		input:   closedInput{},
		audit:   nopAudit{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == nil {
		e.session = NewSession(e.sessionID, cfg.InitialState)
	}
	e.logger = e.logger.With("session_id", e.session.ID)
	return e
}

// Session returns the session driven by the engine.
func (e *Engine) Session() *Session { return e.session }

// StopReason explains why Run returned.
type StopReason string

const (
	ReasonTerminal       StopReason = "terminal"
	ReasonInputClosed    StopReason = "input_closed"
	ReasonCanceled       StopReason = "canceled"
	ReasonIterationLimit StopReason = "iteration_limit"
	ReasonFailed         StopReason = "failed"
)

// Outcome summarizes a Run.
type Outcome struct {
	SessionID  string
	FinalState string
	Reason     StopReason
	Iterations int
}

// ActionResult describes the dispatch performed by an iteration.
type ActionResult struct {
	Name       string
	Dispatched bool
	Result     any
	Route      string
	Err        error
}

// StepResult describes one iteration.
type StepResult struct {
	State     string
	Model     model.Outcome
	Action    ActionResult
	Proposed  string
	NextState string
	Accepted  bool
	// TransitionErr is a *domain.InvalidTransitionError when Accepted is false.
	TransitionErr error
	Terminal      bool

	Input       string
	InputRead   bool
	InputClosed bool
}

// Halted reports whether the iteration ended the run.
func (r StepResult) Halted() bool { return r.Terminal || r.InputClosed }

// Run appends initialInput as the first user turn (when non-empty) and
// iterates until a terminal state, input exhaustion, cancellation or a fatal
// error. A resumed session that was waiting for input reads a line first.
func (e *Engine) Run(ctx context.Context, initialInput string) (Outcome, error) {
	s := e.session
	out := Outcome{SessionID: s.ID}

	e.logger.Info("run started", "state", s.State)
	e.audit.Log(fmt.Sprintf("Run started in state '%s'", s.State))

	switch {
	case initialInput != "":
		if err := e.recordInput(ctx, initialInput); err != nil {
			return e.finish(out, ReasonFailed), err
		}
	case s.Status == domain.StatusWaitingInput:
		closed, err := e.awaitInput(ctx, &StepResult{})
		if err != nil {
			return e.finish(out, e.failureReason(ctx)), err
		}
		if closed {
			return e.finish(out, ReasonInputClosed), nil
		}
	}
	s.Status = domain.StatusRunning

	for {
		if err := ctx.Err(); err != nil {
			return e.finish(out, ReasonCanceled), err
		}
		if e.maxIterations > 0 && out.Iterations >= e.maxIterations {
			return e.finish(out, ReasonIterationLimit), domain.ErrIterationLimit
		}

		res, err := e.Step(ctx)
		if res.State != "" {
			out.Iterations++
		}
		if err != nil {
			return e.finish(out, e.failureReason(ctx)), err
		}
		if res.Terminal {
			return e.finish(out, ReasonTerminal), nil
		}
		if res.InputClosed {
			return e.finish(out, ReasonInputClosed), nil
		}
	}
}

func (e *Engine) failureReason(ctx context.Context) StopReason {
	if ctx.Err() != nil {
		return ReasonCanceled
	}
	return ReasonFailed
}

func (e *Engine) finish(out Outcome, reason StopReason) Outcome {
	out.FinalState = e.session.State
	out.Reason = reason
	e.logger.Info("run finished", "state", out.FinalState, "reason", reason, "iterations", out.Iterations)
	e.audit.Log(fmt.Sprintf("Run finished in state '%s' (%s)", out.FinalState, reason))
	return out
}

// Step runs one iteration, including the input read when the decision
// requires it. StateNotFoundError, output failures and store failures are
// fatal; everything else is recovered and reported.
func (e *Engine) Step(ctx context.Context) (StepResult, error) {
	s := e.session
	spec, ok := e.cfg.State(s.State)
	if !ok {
		err := &domain.StateNotFoundError{State: s.State}
		s.Status = domain.StatusFailed
		e.logger.Error("state not found", "state", s.State)
		e.audit.Log("Fatal: " + err.Error())
		_ = e.sink.Notice(ctx, "Error: "+err.Error())
		_ = e.save(ctx)
		return StepResult{}, err
	}

	s.Iteration++
	res := StepResult{State: s.State}
	e.enterState(ctx, s.State)

	// 2. Model
	res.Model = e.invokeModel(ctx, s.State, spec)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	d := res.Model.Decision

	// 3-4. Record and emit
	s.ledger.AppendTurn(domain.RoleAssistant, d.Message)
	e.audit.Log("Agent: " + d.Message)
	if err := e.sink.Emit(ctx, d.Message); err != nil {
		return res, fmt.Errorf("emit message: %w", err)
	}

	// 5. Action
	res.Action = e.dispatch(ctx, s.State, d)

	// 6-7. Transition and terminal check
	e.transition(ctx, spec, d.NextState, &res)

	if res.Terminal {
		s.Status = domain.StatusTerminated
		return res, e.save(ctx)
	}

	// 8. Input
	if !d.RequireInput {
		s.Status = domain.StatusRunning
		return res, e.save(ctx)
	}
	s.Status = domain.StatusWaitingInput
	if err := e.save(ctx); err != nil {
		return res, err
	}
	closed, err := e.awaitInput(ctx, &res)
	if err != nil {
		return res, err
	}
	res.InputClosed = closed
	return res, nil
}

func (e *Engine) invokeModel(ctx context.Context, stateID string, spec config.StateSpec) model.Outcome {
	s := e.session
	out := e.invoker.Invoke(ctx, model.Input{
		StateID:          stateID,
		Spec:             spec,
		Persona:          e.cfg.Persona,
		SideChannelLabel: e.cfg.SideChannelAction,
		Transcript:       s.ledger.Transcript(),
		SideChannel:      s.ledger.SideChannel(),
	})

	e.logger.Debug("model invoked",
		"state", stateID,
		"model", spec.Model,
		"temperature", spec.Temperature,
		"duration", out.Duration,
		"fallback", out.Fallback())
	e.audit.Log(fmt.Sprintf("Invoking model %s (temperature %.2f) in state '%s'", spec.Model, spec.Temperature, stateID))
	e.audit.Block("SYSTEM PROMPT", out.SystemPrompt)
	e.audit.Block("MESSAGES", out.Messages)
	e.audit.Block("RAW RESPONSE", out.Raw)
	if out.Err != nil {
		e.audit.Log("Model error: " + out.Err.Error())
	}
	e.audit.Block("DECISION", out.Decision)

	if e.hooks.OnModelCall != nil {
		e.hooks.OnModelCall(ctx, &domain.ModelEvent{
			EventBase:   e.eventBase(domain.EventModelCall),
			State:       stateID,
			Model:       spec.Model,
			Temperature: spec.Temperature,
			Duration:    out.Duration,
			Fallback:    out.Fallback(),
			Err:         out.Err,
		})
	}
	return out
}

// transition applies the validation rule to the proposed state. The terminal
// check uses the proposed value, so a rejected transition to a terminal name
// still ends the run.
func (e *Engine) transition(ctx context.Context, spec config.StateSpec, proposed string, res *StepResult) {
	s := e.session
	from := s.State
	res.Proposed = proposed
	res.Accepted = e.cfg.HasState(proposed) && spec.Allows(proposed)
	res.Terminal = e.cfg.IsTerminal(proposed)

	if res.Accepted {
		s.State = proposed
		e.logger.Debug("transition accepted", "from", from, "to", proposed)
		e.audit.Log(fmt.Sprintf("State transition: '%s' -> '%s'", from, proposed))
	} else {
		s.State = domain.ErrorState
		err := &domain.InvalidTransitionError{From: from, To: proposed, Unknown: !e.cfg.HasState(proposed)}
		res.TransitionErr = err
		e.audit.Log(fmt.Sprintf("Invalid transition from '%s' to '%s', forcing '%s'", from, proposed, domain.ErrorState))
		if res.Terminal {
			e.logger.Debug("transition rejected", "from", from, "to", proposed, "terminal", true)
		} else {
			e.logger.Warn("transition rejected", "from", from, "to", proposed)
		}
		_ = e.sink.Notice(ctx, fmt.Sprintf("Error: Invalid transition from '%s' to '%s'", from, proposed))
	}
	res.NextState = s.State

	if res.Terminal {
		e.audit.Log(fmt.Sprintf("Terminal state '%s' proposed, stopping", proposed))
	}

	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: e.eventBase(domain.EventTransition),
			From:      from,
			Proposed:  proposed,
			To:        s.State,
			Accepted:  res.Accepted,
			Terminal:  res.Terminal,
		})
	}
}

// awaitInput reads one line and appends it as a user turn. It reports true
// when the input source is exhausted.
func (e *Engine) awaitInput(ctx context.Context, res *StepResult) (bool, error) {
	line, err := e.input.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			e.logger.Info("input closed")
			e.audit.Log("Input closed")
			return true, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("read input: %w", err)
	}
	res.Input = line
	res.InputRead = true
	return false, e.recordInput(ctx, line)
}

func (e *Engine) recordInput(ctx context.Context, line string) error {
	s := e.session
	s.ledger.AppendTurn(domain.RoleUser, line)
	s.Status = domain.StatusRunning
	e.audit.Log("You: " + line)
	return e.save(ctx)
}

func (e *Engine) enterState(ctx context.Context, state string) {
	e.logger.Debug("entering state", "state", state, "iteration", e.session.Iteration)
	if e.hooks.OnStateEnter != nil {
		e.hooks.OnStateEnter(ctx, &domain.StateEvent{
			EventBase: e.eventBase(domain.EventStateEnter),
			State:     state,
		})
	}
}

func (e *Engine) save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(ctx, e.session.Snapshot()); err != nil {
		return fmt.Errorf("save session %s: %w", e.session.ID, err)
	}
	return nil
}

func (e *Engine) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: e.session.ID,
		Iteration: e.session.Iteration,
	}
}
