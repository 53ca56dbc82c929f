package domain

import "time"

// Code classifies the outcome of a workflow run.
type Code string

const (
	CodeOK                    Code = "OK"
	CodeConfigError           Code = "CONFIG_ERROR"
	CodeConnectTimeout        Code = "CONNECT_TIMEOUT"
	CodeResponseTimeout       Code = "RESPONSE_TIMEOUT"
	CodePeerDisconnected      Code = "PEER_DISCONNECTED"
	CodeCancelled             Code = "CANCELLED"
	CodeNegotiationFailed     Code = "NEGOTIATION_FAILED"
	CodeProtocolError         Code = "PROTOCOL_ERROR"
	CodeScreenMismatch        Code = "SCREEN_MISMATCH"
	CodeUnknownScreen         Code = "UNKNOWN_SCREEN"
	CodeFieldNotFound         Code = "FIELD_NOT_FOUND"
	CodeAssertionFailed       Code = "ASSERTION_FAILED"
	CodeErrorTextDetected     Code = "ERROR_TEXT_DETECTED"
	CodeUnresolvedPlaceholder Code = "UNRESOLVED_PLACEHOLDER"
	CodeIOError               Code = "IO_ERROR"
)

// Retryable reports whether a step failing with this code may be attempted again.
// Transport failures end the run.
func (c Code) Retryable() bool {
	switch c {
	case CodeScreenMismatch, CodeUnknownScreen, CodeFieldNotFound,
		CodeAssertionFailed, CodeErrorTextDetected:
		return true
	}
	return false
}

// Severity of a diagnostic log entry.
type Severity string

const (
	SeverityDebug Severity = "debug"
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// LogEntry is one line of a run's diagnostic log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Step      string    `json:"step,omitempty"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
}

// Result is the structured outcome of a workflow run.
// Data always carries whatever was scraped before a failure.
type Result struct {
	RunID      string            `json:"run_id,omitempty"`
	Workflow   string            `json:"workflow"`
	Success    bool              `json:"success"`
	FailedStep string            `json:"failed_step,omitempty"`
	Code       Code              `json:"code"`
	Message    string            `json:"message,omitempty"`
	Data       map[string]string `json:"data"`
	Log        []LogEntry        `json:"log"`
	Started    time.Time         `json:"started"`
	Finished   time.Time         `json:"finished"`
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
