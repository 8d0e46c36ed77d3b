package session

import (
	"context"
	"log/slog"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
)

// ActionExecutor receives decoded dialogue actions when the session advances
// through a node that carries one. The session decides when to invoke it,
// never what it does. Implementations must ignore action kinds they don't
// recognize rather than fail.
type ActionExecutor interface {
	Execute(ctx context.Context, action *dialogue.Action) error
}

// NoopExecutor logs actions and discards them. Useful when no progress
// backend is wired, and as the zero-risk default.
type NoopExecutor struct {
	Logger *slog.Logger
}

var _ ActionExecutor = (*NoopExecutor)(nil)

func (e *NoopExecutor) Execute(ctx context.Context, action *dialogue.Action) error {
	if e.Logger != nil {
		e.Logger.Debug("Discarding dialogue action", "action", action.String())
	}
	return nil
}
