package domain

import (
	"context"
	"time"
)

// SessionEvent marks the start or end of a host connection.
type SessionEvent struct {
	Timestamp    time.Time     `json:"timestamp"`
	SessionID    string        `json:"session_id"`
	RemoteAddr   string        `json:"remote_addr,omitempty"`
	TerminalType string        `json:"terminal_type,omitempty"`
	Turns        int           `json:"turns,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Err          error         `json:"-"`
}

// ScreenEvent is emitted whenever the host sends a screen.
type ScreenEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	ScreenID  string    `json:"screen_id"`
	Error     string    `json:"error,omitempty"`
}

// TransitionEvent describes one navigation decision.
type TransitionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Key        string    `json:"key"`
	Validation string    `json:"validation,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Moved reports whether the session changed screen.
func (e *TransitionEvent) Moved() bool { return e.Error == "" }

// StepEvent describes one attempt of a workflow step.
type StepEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Workflow  string        `json:"workflow"`
	Step      string        `json:"step"`
	Kind      StepKind      `json:"kind"`
	Attempt   int           `json:"attempt"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// HostHooks are optional callbacks fired by the host engine.
type HostHooks struct {
	OnSessionStart     func(context.Context, *SessionEvent)
	OnSessionEnd       func(context.Context, *SessionEvent)
	OnScreenEnter      func(context.Context, *ScreenEvent)
	OnTransition       func(context.Context, *TransitionEvent)
	OnValidationFailed func(context.Context, *TransitionEvent)
}

// ClientHooks are optional callbacks fired by the workflow engine.
type ClientHooks struct {
	OnStepStart  func(context.Context, *StepEvent)
	OnStepFinish func(context.Context, *StepEvent)
}

// Join returns hooks that call h first, then other.
func (h HostHooks) Join(other HostHooks) HostHooks {
	return HostHooks{
		OnSessionStart:     join(h.OnSessionStart, other.OnSessionStart),
		OnSessionEnd:       join(h.OnSessionEnd, other.OnSessionEnd),
		OnScreenEnter:      join(h.OnScreenEnter, other.OnScreenEnter),
		OnTransition:       join(h.OnTransition, other.OnTransition),
		OnValidationFailed: join(h.OnValidationFailed, other.OnValidationFailed),
	}
}

// Join returns hooks that call h first, then other.
func (h ClientHooks) Join(other ClientHooks) ClientHooks {
	return ClientHooks{
		OnStepStart:  join(h.OnStepStart, other.OnStepStart),
		OnStepFinish: join(h.OnStepFinish, other.OnStepFinish),
	}
}

func join[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
