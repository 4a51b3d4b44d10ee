package app

import (
	"context"
	"fmt"

	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/host"
	"github.com/vk/hookhost/internal/interaction"
	"github.com/vk/hookhost/internal/metrics"
)

// GenericFailureMessage is the only thing a user sees when a command fails.
const GenericFailureMessage = "There was an error while executing this command!"

// Dispatch routes one inbound request to the command registered under its
// identifier. Unknown identifiers are logged and dropped without a
// response. A failing handler gets exactly one generic failure response: a
// reply when nothing was sent yet, a follow-up otherwise.
func (a *App) Dispatch(ctx context.Context, ev interaction.Event, responder interaction.Responder) {
	ctx, logger := ctxlog.With(a.withLogger(ctx), "command", ev.Command, "event_id", ev.ID)

	snap := a.snapshot.Load()
	cmd, ok := snap.Get(ev.Command)
	if !ok {
		logger.Warn("No command matching request.", "user", ev.User.ID)
		a.metrics.ObserveDispatch(metrics.DispatchUnknown)
		return
	}

	ctx = host.WithServices(ctx, a.services())
	req, err := interaction.NewRequest(ev, cmd.Spec, responder)
	if err == nil {
		err = invoke(ctx, cmd.Handler, req)
	} else {
		req = interaction.NewRawRequest(ev, responder)
	}

	if err == nil {
		logger.Debug("Command executed.", "status", req.Status())
		a.metrics.ObserveDispatch(metrics.DispatchOK)
		return
	}

	logger.Error("Command failed.", "handler", cmd.HandlerName, "source", cmd.Source, "status", req.Status(), "error", err)
	a.metrics.ObserveDispatch(metrics.DispatchFailed)
	if ferr := req.Fail(ctx, GenericFailureMessage); ferr != nil {
		logger.Error("Failed to deliver failure response.", "error", ferr)
	}
}

func invoke(ctx context.Context, fn handlers.CommandFunc, req *interaction.Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return fn(ctx, req)
}
