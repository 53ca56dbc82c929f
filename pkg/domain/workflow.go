package domain

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// StepKind names the three workflow step variants.
type StepKind string

const (
	StepNavigate StepKind = "navigate"
	StepScrape   StepKind = "scrape"
	StepAssert   StepKind = "assert"
)

// CompareOp is the comparison an assertion applies to a screen value.
type CompareOp string

const (
	CompareEquals     CompareOp = "equals"
	CompareNotEquals  CompareOp = "not_equals"
	CompareContains   CompareOp = "contains"
	CompareStartsWith CompareOp = "starts_with"
	CompareEndsWith   CompareOp = "ends_with"
	CompareEmpty      CompareOp = "empty"
	CompareNotEmpty   CompareOp = "not_empty"
)

func (op CompareOp) valid() bool {
	switch op {
	case CompareEquals, CompareNotEquals, CompareContains, CompareStartsWith,
		CompareEndsWith, CompareEmpty, CompareNotEmpty:
		return true
	}
	return false
}

// NavigateStep fills input fields, presses a key and optionally expects a screen.
type NavigateStep struct {
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Key    string            `json:"key" yaml:"key"`
	Expect string            `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// ScrapeStep reads named fields into the run's output.
// Screen selects an explicit definition; empty means the current screen.
type ScrapeStep struct {
	Fields []string `json:"fields" yaml:"fields"`
	Screen string   `json:"screen,omitempty" yaml:"screen,omitempty"`
}

// ErrorCheck fails an assertion when the row shows error text.
// An empty Text treats any non-blank content on the row as an error.
type ErrorCheck struct {
	Row  int    `json:"row" yaml:"row"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// FieldAssertion compares one field value.
type FieldAssertion struct {
	Field string    `json:"field" yaml:"field"`
	Op    CompareOp `json:"op" yaml:"op"`
	Value string    `json:"value,omitempty" yaml:"value,omitempty"`
}

// AssertStep checks screen identity, error text and field values.
type AssertStep struct {
	Screen  string           `json:"screen,omitempty" yaml:"screen,omitempty"`
	NoError *ErrorCheck      `json:"no_error,omitempty" yaml:"no_error,omitempty"`
	Fields  []FieldAssertion `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// WorkflowStep is exactly one of Navigate, Scrape or Assert.
type WorkflowStep struct {
	Name       string        `json:"name" yaml:"name"`
	Navigate   *NavigateStep `json:"navigate,omitempty" yaml:"navigate,omitempty"`
	Scrape     *ScrapeStep   `json:"scrape,omitempty" yaml:"scrape,omitempty"`
	Assert     *AssertStep   `json:"assert,omitempty" yaml:"assert,omitempty"`
	Retries    int           `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryDelay time.Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
}

// Kind returns the populated variant.
func (s WorkflowStep) Kind() StepKind {
	switch {
	case s.Navigate != nil:
		return StepNavigate
	case s.Scrape != nil:
		return StepScrape
	default:
		return StepAssert
	}
}

// Validate checks the step shape.
func (s WorkflowStep) Validate() []string {
	var out []string
	set := 0
	for _, present := range []bool{s.Navigate != nil, s.Scrape != nil, s.Assert != nil} {
		if present {
			set++
		}
	}
	name := s.Name
	if name == "" {
		out = append(out, "step with empty name")
		name = "?"
	}
	if set != 1 {
		out = append(out, fmt.Sprintf("step %q: exactly one of navigate, scrape or assert is required", name))
	}
	if s.Navigate != nil && s.Navigate.Key == "" {
		out = append(out, fmt.Sprintf("step %q: navigate requires a key", name))
	}
	if s.Scrape != nil && len(s.Scrape.Fields) == 0 {
		out = append(out, fmt.Sprintf("step %q: scrape requires at least one field", name))
	}
	if s.Assert != nil {
		for _, fa := range s.Assert.Fields {
			if !fa.Op.valid() {
				out = append(out, fmt.Sprintf("step %q: field %q has unknown operator %q", name, fa.Field, fa.Op))
			}
		}
	}
	if s.Retries < 0 {
		out = append(out, fmt.Sprintf("step %q: retries must not be negative", name))
	}
	return out
}

// TLSParams configures an encrypted client connection.
type TLSParams struct {
	Enabled            bool   `json:"enabled" yaml:"enabled"`
	CAFile             string `json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	ServerName         string `json:"server_name,omitempty" yaml:"server_name,omitempty"`
}

// Default connection parameters.
const (
	DefaultTerminalType    = "IBM-3278-2-E"
	DefaultConnectTimeout  = 10 * time.Second
	DefaultResponseTimeout = 30 * time.Second
)

// ConnectionParams locates the host and bounds the client's waits.
type ConnectionParams struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	ConnectTimeout  time.Duration `json:"connect_timeout,omitempty" yaml:"connect_timeout,omitempty"`
	ResponseTimeout time.Duration `json:"response_timeout,omitempty" yaml:"response_timeout,omitempty"`
	TerminalType    string        `json:"terminal_type,omitempty" yaml:"terminal_type,omitempty"`
	DeviceName      string        `json:"device_name,omitempty" yaml:"device_name,omitempty"`
	TLS             TLSParams     `json:"tls" yaml:"tls"`
}

// WithDefaults fills unset timeouts and terminal type.
func (c ConnectionParams) WithDefaults() ConnectionParams {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.TerminalType == "" {
		c.TerminalType = DefaultTerminalType
	}
	return c
}

// Addr returns host:port.
func (c ConnectionParams) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TerminalID is the terminal type, suffixed with @device when a device name is set.
func (c ConnectionParams) TerminalID() string {
	if c.DeviceName == "" {
		return c.TerminalType
	}
	return c.TerminalType + "@" + c.DeviceName
}

// Workflow is a named, ordered list of steps against one host.
type Workflow struct {
	Name       string           `json:"name" yaml:"name"`
	Connection ConnectionParams `json:"connection" yaml:"connection"`
	Steps      []WorkflowStep   `json:"steps" yaml:"steps"`
}

// Validate checks the workflow shape without consulting a catalog.
func (w *Workflow) Validate() error {
	var problems []string
	if w.Name == "" {
		problems = append(problems, "workflow name is required")
	}
	if w.Connection.Host == "" {
		problems = append(problems, "connection.host is required")
	}
	if w.Connection.Port < 1 || w.Connection.Port > 65535 {
		problems = append(problems, fmt.Sprintf("connection.port %d is out of range", w.Connection.Port))
	}
	if len(w.Steps) == 0 {
		problems = append(problems, "at least one step is required")
	}
	names := make(map[string]bool, len(w.Steps))
	for _, s := range w.Steps {
		problems = append(problems, s.Validate()...)
		if s.Name != "" && names[s.Name] {
			problems = append(problems, fmt.Sprintf("step %q: duplicate step name", s.Name))
		}
		names[s.Name] = true
	}
	if len(problems) > 0 {
		return &ConfigError{Source: "workflow " + w.Name, Problems: problems}
	}
	return nil
}
