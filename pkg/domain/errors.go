package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below reports true for errors.Is against
// its matching sentinel.
var (
	ErrConfig            = errors.New("configuration error")
	ErrStateNotFound     = errors.New("state not found")
	ErrModelInvocation   = errors.New("model invocation failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrActionDispatch    = errors.New("action dispatch failed")

	// ErrIterationLimit is returned when a run exceeds its configured iteration budget.
	ErrIterationLimit = errors.New("iteration limit reached")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")
)

// ConfigError reports an unreadable or unparsable configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// StateNotFoundError reports a current state with no matching specification.
// It is fatal for the run.
type StateNotFoundError struct {
	State string
}

func (e *StateNotFoundError) Error() string {
	return fmt.Sprintf("state %q not found in configuration", e.State)
}

func (e *StateNotFoundError) Is(target error) bool { return target == ErrStateNotFound }

// ModelInvocationError reports a failure to reach the model or to parse its
// response. It never escapes the model invoker; it is carried alongside the
// fallback decision for logging.
type ModelInvocationError struct {
	Model string
	Raw   string
	Err   error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

func (e *ModelInvocationError) Is(target error) bool { return target == ErrModelInvocation }

// InvalidTransitionError reports a proposed next state that failed validation.
type InvalidTransitionError struct {
	From string
	To   string
	// Unknown is true when To is not a configured state at all, as opposed to
	// a configured state missing from the allow-list.
	Unknown bool
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from '%s' to '%s'", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ActionDispatchError reports a registered action that failed while running.
type ActionDispatchError struct {
	Action string
	Err    error
}

func (e *ActionDispatchError) Error() string {
	return fmt.Sprintf("action %s: %v", e.Action, e.Err)
}

func (e *ActionDispatchError) Unwrap() error { return e.Err }

func (e *ActionDispatchError) Is(target error) bool { return target == ErrActionDispatch }
