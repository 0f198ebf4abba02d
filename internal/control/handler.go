package control

import (
	"context"
	"fmt"

	"firestige.xyz/ingestd/internal/runstate"
)

// EngineView is the subset of *engine.Engine the control handler needs;
// kept narrow so this package doesn't import internal/engine directly and
// risk a cycle with anything engine later imports from control.
type EngineView interface {
	GetState() runstate.State
	RouteTableSources() []string
}

// CommandHandler answers status/reload/stop commands against a running
// daemon, grounded on the teacher's CommandHandler.Handle dispatch, reduced
// to the three methods this source's control surface names (§9).
type CommandHandler struct {
	deployName string
	engine     EngineView
	reload     func(ctx context.Context) error
	stop       func(ctx context.Context) error
}

// NewCommandHandler constructs a CommandHandler. reload and stop are
// supplied by the daemon process (internal/daemonproc) since reload means
// "reload config and refresh the route table" and stop means "tear the
// Engine down and let the process exit" — both outside what the Engine
// alone can decide.
func NewCommandHandler(deployName string, e EngineView, reload, stop func(ctx context.Context) error) *CommandHandler {
	return &CommandHandler{deployName: deployName, engine: e, reload: reload, stop: stop}
}

// Handle dispatches one Command to the matching method.
func (h *CommandHandler) Handle(ctx context.Context, cmd Command) Response {
	switch cmd.Method {
	case "status":
		return h.status(cmd.ID)
	case "reload":
		return h.handleReload(ctx, cmd.ID)
	case "stop":
		return h.handleStop(ctx, cmd.ID)
	default:
		return Response{ID: cmd.ID, Error: &ErrorInfo{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("unknown method %q", cmd.Method)}}
	}
}

func (h *CommandHandler) status(id string) Response {
	return Response{ID: id, Result: StatusResult{
		DeployName:    h.deployName,
		EngineState:   h.engine.GetState().String(),
		RoutedSources: h.engine.RouteTableSources(),
	}}
}

func (h *CommandHandler) handleReload(ctx context.Context, id string) Response {
	if err := h.reload(ctx); err != nil {
		return Response{ID: id, Error: &ErrorInfo{Code: ErrCodeInternalError, Message: err.Error()}}
	}
	return Response{ID: id, Result: ReloadResult{Applied: true}}
}

func (h *CommandHandler) handleStop(ctx context.Context, id string) Response {
	if err := h.stop(ctx); err != nil {
		return Response{ID: id, Error: &ErrorInfo{Code: ErrCodeInternalError, Message: err.Error()}}
	}
	return Response{ID: id, Result: StopResult{Stopped: true}}
}
