package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/parlance/pkg/domain"
)

// LoggingHooks writes one structured record per lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			logger.InfoContext(ctx, "state_enter", "state", e.State, "iteration", e.Iteration)
		},
		OnModelCall: func(ctx context.Context, e *domain.ModelEvent) {
			attrs := []any{"state", e.State, "model", e.Model, "duration", e.Duration}
			if e.Err != nil {
				logger.WarnContext(ctx, "model_call", append(attrs, "fallback", true, "error", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "model_call", attrs...)
		},
		OnActionDispatch: func(ctx context.Context, e *domain.ActionEvent) {
			attrs := []any{"action", e.Action, "route", e.Route, "duration", e.Duration}
			if e.Err != nil {
				logger.WarnContext(ctx, "action_dispatch", append(attrs, "error", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "action_dispatch", attrs...)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"from", e.From,
				"proposed", e.Proposed,
				"to", e.To,
				"accepted", e.Accepted,
				"terminal", e.Terminal)
		},
	}
}
