package host

import (
	"log/slog"
	"maps"

	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/pkg/domain"
)

// Operator messages shown on the error line.
const (
	MsgInvalidKey         = "INVALID KEY"
	MsgRequiredMissing    = "REQUIRED FIELD MISSING"
	MsgInvalidCredentials = "INVALID USER ID OR PASSWORD"
)

// Outcome is the navigator's decision for one turn.
type Outcome struct {
	From    string
	Target  string
	Key     string
	Rule    *domain.TransitionRule
	Error   string
	Updates map[string]string
}

// Moved reports whether the session leaves its screen.
func (o Outcome) Moved() bool { return o.Error == "" }

// Validator checks a submission for a named validation.
// It returns extra session data on success, or the operator message on failure.
type Validator func(cfg *domain.NavigationConfig, submitted map[string]string) (map[string]string, string)

// Navigator decides transitions from the navigation configuration.
// It holds no per-session state and is safe for concurrent use.
type Navigator struct {
	catalog    *domain.Catalog
	config     *domain.NavigationConfig
	validators map[string]Validator
	logger     *slog.Logger
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithValidator registers or replaces a named validation.
func WithValidator(name string, v Validator) NavigatorOption {
	return func(n *Navigator) {
		n.validators[name] = v
	}
}

// WithNavigatorLogger sets the navigator's logger.
func WithNavigatorLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// NewNavigator creates a navigator over a validated catalog and configuration.
// Every entity table gets a "<entity>_lookup" validation.
func NewNavigator(cat *domain.Catalog, cfg *domain.NavigationConfig, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		catalog: cat,
		config:  cfg,
		validators: map[string]Validator{
			domain.ValidationCredentials: validateCredentials,
		},
		logger: logging.NewNop(),
	}
	for name := range cfg.Entities {
		n.validators[name+"_lookup"] = entityLookup(name)
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Catalog returns the screen catalog.
func (n *Navigator) Catalog() *domain.Catalog { return n.catalog }

// Config returns the navigation configuration.
func (n *Navigator) Config() *domain.NavigationConfig { return n.config }

// InitialScreen is where every session starts.
func (n *Navigator) InitialScreen() string { return n.config.InitialScreen }

// Navigate picks the first rule for the current screen and key whose required
// fields and conditions hold on this turn's submission. Values retained in the
// session are never consulted. The session itself is not modified; see Apply.
func (n *Navigator) Navigate(state *domain.SessionState, key string, submitted map[string]string) Outcome {
	out := Outcome{From: state.CurrentScreen, Target: state.CurrentScreen, Key: key}

	candidates := n.config.Candidates(state.CurrentScreen, key)
	if len(candidates) == 0 {
		out.Error = MsgInvalidKey
		return out
	}

	for i := range candidates {
		rule := candidates[i]
		if missing := rule.Missing(submitted); len(missing) > 0 {
			n.logger.Debug("rule skipped: missing fields", "from", rule.From, "key", rule.Key, "missing", missing)
			continue
		}
		if !rule.Matches(submitted) {
			continue
		}
		out.Rule = &rule

		if rule.IsGuard() {
			out.Error = rule.Error
			return out
		}

		updates := n.retainable(state.CurrentScreen, submitted)
		if rule.Validation != "" {
			validate, ok := n.validators[rule.Validation]
			if !ok {
				n.logger.Error("validation not registered", "validation", rule.Validation)
				out.Error = MsgInvalidKey
				return out
			}
			extra, msg := validate(n.config, submitted)
			if msg != "" {
				out.Error = msg
				return out
			}
			maps.Copy(updates, extra)
		}

		out.Target = rule.To
		out.Updates = updates
		return out
	}

	out.Error = MsgRequiredMissing
	return out
}

// Apply commits a successful outcome to the session.
func (n *Navigator) Apply(state *domain.SessionState, out Outcome) {
	state.Turns++
	if !out.Moved() {
		return
	}
	state.Merge(out.Updates)
	state.CurrentScreen = out.Target
}

// retainable filters a submission down to the non-sensitive fields of the screen.
func (n *Navigator) retainable(screenID string, submitted map[string]string) map[string]string {
	out := make(map[string]string, len(submitted))
	def, ok := n.catalog.Screen(screenID)
	if !ok {
		return out
	}
	for name, value := range submitted {
		f, ok := def.Field(name)
		if !ok || f.IsSensitive() {
			continue
		}
		out[name] = value
	}
	return out
}
