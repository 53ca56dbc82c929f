package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/greenscreen/internal/config"
	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/pkg/domain"
)

// NewLogger builds the process logger from LOG settings. Logs go to w,
// normally stderr, so stdout stays free for results.
func NewLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level, cfg.JSON), nil
}

func hostDebugHooks(logger *slog.Logger) domain.HostHooks {
	return domain.HostHooks{
		OnSessionStart: func(ctx context.Context, e *domain.SessionEvent) {
			logger.Debug("session start", "session_id", e.SessionID, "remote", e.RemoteAddr, "terminal", e.TerminalType)
		},
		OnSessionEnd: func(ctx context.Context, e *domain.SessionEvent) {
			logger.Debug("session end", "session_id", e.SessionID, "turns", e.Turns, "duration", e.Duration, "err", e.Err)
		},
		OnScreenEnter: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.Debug("screen", "session_id", e.SessionID, "screen", e.ScreenID, "error", e.Error)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.Debug("transition", "session_id", e.SessionID, "from", e.From, "to", e.To, "key", e.Key)
		},
		OnValidationFailed: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.Debug("validation failed", "session_id", e.SessionID, "screen", e.From, "validation", e.Validation, "error", e.Error)
		},
	}
}

func clientDebugHooks(logger *slog.Logger) domain.ClientHooks {
	return domain.ClientHooks{
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("step start", "workflow", e.Workflow, "step", e.Step, "kind", e.Kind, "attempt", e.Attempt)
		},
		OnStepFinish: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.Debug("step failed", "step", e.Step, "attempt", e.Attempt, "code", domain.CodeOf(e.Err), "err", e.Err)
				return
			}
			logger.Debug("step done", "step", e.Step, "attempt", e.Attempt, "duration", e.Duration)
		},
	}
}
