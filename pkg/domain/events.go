package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter     EventType = "state_enter"
	EventModelCall      EventType = "model_call"
	EventActionDispatch EventType = "action_dispatch"
	EventTransition     EventType = "transition"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Iteration int       `json:"iteration"`
}

// StateEvent is emitted at the start of every iteration.
type StateEvent struct {
	EventBase
	State string `json:"state"`
}

// ModelEvent describes a completed model invocation.
type ModelEvent struct {
	EventBase
	State       string        `json:"state"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Duration    time.Duration `json:"duration"`
	Fallback    bool          `json:"fallback,omitempty"`
	Err         error         `json:"-"`
}

// Routing outcomes for an action result.
const (
	RouteSideChannel = "side_channel"
	RouteTranscript  = "transcript"
	RouteDropped     = "dropped"
)

// ActionEvent describes a dispatched action.
type ActionEvent struct {
	EventBase
	State    string         `json:"state"`
	Action   string         `json:"action"`
	Params   map[string]any `json:"params,omitempty"`
	Result   any            `json:"result,omitempty"`
	Route    string         `json:"route"`
	Duration time.Duration  `json:"duration"`
	Err      error          `json:"-"`
}

// TransitionEvent describes the transition decision of an iteration.
type TransitionEvent struct {
	EventBase
	From     string `json:"from"`
	Proposed string `json:"proposed"`
	To       string `json:"to"`
	Accepted bool   `json:"accepted"`
	Terminal bool   `json:"terminal"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnStateEnter     func(context.Context, *StateEvent)
	OnModelCall      func(context.Context, *ModelEvent)
	OnActionDispatch func(context.Context, *ActionEvent)
	OnTransition     func(context.Context, *TransitionEvent)
}

// ChainHooks merges several hook sets; callbacks run in argument order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *StateEvent) {
			for _, h := range hooks {
				if h.OnStateEnter != nil {
					h.OnStateEnter(ctx, e)
				}
			}
		},
		OnModelCall: func(ctx context.Context, e *ModelEvent) {
			for _, h := range hooks {
				if h.OnModelCall != nil {
					h.OnModelCall(ctx, e)
				}
			}
		},
		OnActionDispatch: func(ctx context.Context, e *ActionEvent) {
			for _, h := range hooks {
				if h.OnActionDispatch != nil {
					h.OnActionDispatch(ctx, e)
				}
			}
		},
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
	}
}
