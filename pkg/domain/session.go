package domain

import (
	"maps"
	"time"
)

// SessionState is one host connection's view of the conversation.
// It is owned exclusively by the goroutine serving that connection.
type SessionState struct {
	ID            string
	CurrentScreen string
	// Data holds values accumulated across turns. Sensitive values never enter it.
	Data         map[string]string
	Turns        int
	TerminalType string
	RemoteAddr   string
	Started      time.Time
}

// NewSessionState creates a session positioned on the initial screen.
func NewSessionState(id, initialScreen string) *SessionState {
	return &SessionState{
		ID:            id,
		CurrentScreen: initialScreen,
		Data:          make(map[string]string),
		Started:       time.Now(),
	}
}

// Merge copies updates into the session data.
func (s *SessionState) Merge(updates map[string]string) {
	maps.Copy(s.Data, updates)
}
