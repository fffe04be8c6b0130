package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/registry"
)

// dispatch runs the decision's action when it is registered and routes the
// result. Unregistered names are a no-op. A failing action is reported but
// leaves both transcripts untouched.
func (e *Engine) dispatch(ctx context.Context, state string, d domain.Decision) ActionResult {
	res := ActionResult{Name: d.Action}
	if d.Action == "" || !e.actions.Has(d.Action) {
		if d.Action != "" {
			e.logger.Debug("action not registered, skipping", "action", d.Action)
		}
		return res
	}

	res.Dispatched = true
	e.audit.Log(fmt.Sprintf("Dispatching action '%s'", d.Action))
	e.audit.Block("ACTION PARAMS", d.ActionParams)

	start := time.Now()
	val, err := e.actions.Dispatch(ctx, d.Action, d.ActionParams)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		res.Err = err
		res.Route = domain.RouteDropped
		e.logger.Warn("action failed", "action", d.Action, "error", err)
		e.audit.Log("Action error: " + err.Error())
	case registry.IsEmpty(val):
		res.Route = domain.RouteDropped
		e.logger.Debug("action returned no result", "action", d.Action)
	default:
		res.Result = val
		text := registry.FormatResult(val)
		if d.Action == e.cfg.SideChannelAction {
			e.session.ledger.AppendSideChannel(text)
			res.Route = domain.RouteSideChannel
		} else {
			e.session.ledger.AppendTurn(domain.RoleSystem, domain.ActionResultPrefix+text)
			res.Route = domain.RouteTranscript
		}
		e.audit.Block("ACTION RESULT", text)
	}

	if e.hooks.OnActionDispatch != nil {
		e.hooks.OnActionDispatch(ctx, &domain.ActionEvent{
			EventBase: e.eventBase(domain.EventActionDispatch),
			State:     state,
			Action:    d.Action,
			Params:    d.ActionParams,
			Result:    res.Result,
			Route:     res.Route,
			Duration:  elapsed,
			Err:       res.Err,
		})
	}
	return res
}
