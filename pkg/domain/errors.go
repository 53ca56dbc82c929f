package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Transport sentinels. Errors returned by the wire layers wrap one of these.
var (
	ErrConnectTimeout   = errors.New("connect timeout")
	ErrResponseTimeout  = errors.New("response timeout")
	ErrPeerDisconnected = errors.New("peer disconnected")
	// ErrCancelled also matches context.Canceled via errors.Is.
	ErrCancelled = fmt.Errorf("cancelled: %w", context.Canceled)
	// ErrNegotiationBudget is returned when a peer keeps negotiating past the command budget.
	ErrNegotiationBudget = errors.New("negotiation budget exhausted")
	// ErrUnknownScreen is returned when no catalog identifier matches the buffer.
	ErrUnknownScreen = errors.New("unknown screen")
	// ErrResultNotFound is returned by result stores for unknown run IDs.
	ErrResultNotFound = errors.New("result not found")
)

// ConfigError collects every problem found while loading one configuration source.
type ConfigError struct {
	Source   string
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", e.Source, e.Problems[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d problems:\n", e.Source, len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return b.String()
}

// NegotiationError reports a refused mandatory option or a malformed negotiation.
type NegotiationError struct {
	Option string
	Reason string
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("negotiation failed on %s: %s", e.Option, e.Reason)
}

// DecodeError reports a record the wire parser cannot accept.
type DecodeError struct {
	Offset int
	Order  byte
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Order != 0 {
		return fmt.Sprintf("decode error at offset %d (order %#02x): %s", e.Offset, e.Order, e.Reason)
	}
	return fmt.Sprintf("decode error at offset %d: %s", e.Offset, e.Reason)
}

// StepError is an application-level workflow step failure.
type StepError struct {
	Step    string
	Code    Code
	Reason  string
	Missing []string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %s", e.Step, e.Reason)
}

// CodeOf maps any error onto its result code.
func CodeOf(err error) Code {
	var (
		stepErr *StepError
		cfgErr  *ConfigError
		negErr  *NegotiationError
		decErr  *DecodeError
	)
	switch {
	case err == nil:
		return CodeOK
	case errors.As(err, &stepErr):
		return stepErr.Code
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.Is(err, ErrConnectTimeout):
		return CodeConnectTimeout
	case errors.Is(err, ErrResponseTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeResponseTimeout
	case errors.Is(err, ErrPeerDisconnected):
		return CodePeerDisconnected
	case errors.As(err, &negErr), errors.Is(err, ErrNegotiationBudget):
		return CodeNegotiationFailed
	case errors.As(err, &decErr):
		return CodeProtocolError
	case errors.Is(err, ErrUnknownScreen):
		return CodeUnknownScreen
	case errors.As(err, &cfgErr):
		return CodeConfigError
	default:
		return CodeIOError
	}
}
