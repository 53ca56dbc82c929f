package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ConditionOp is the comparison a rule condition applies to a submitted value.
type ConditionOp string

const (
	OpEquals    ConditionOp = "equals"
	OpNotEquals ConditionOp = "not_equals"
	OpMatches   ConditionOp = "matches"
	OpPresent   ConditionOp = "present"
)

// Condition constrains a value submitted on the current turn.
type Condition struct {
	Field string      `json:"field" yaml:"field"`
	Op    ConditionOp `json:"op" yaml:"op"`
	Value string      `json:"value,omitempty" yaml:"value,omitempty"`

	pattern *regexp.Regexp
}

// Holds evaluates the condition against this turn's submission only.
func (c Condition) Holds(submitted map[string]string) bool {
	v, ok := submitted[c.Field]
	switch c.Op {
	case OpEquals:
		return ok && v == c.Value
	case OpNotEquals:
		return !ok || v != c.Value
	case OpPresent:
		return ok && strings.TrimSpace(v) != ""
	case OpMatches:
		if !ok {
			return false
		}
		if c.pattern != nil {
			return c.pattern.MatchString(v)
		}
		matched, err := regexp.MatchString(c.Value, v)
		return err == nil && matched
	default:
		return false
	}
}

// Built-in validation names.
const (
	ValidationCredentials = "credentials"
	lookupSuffix          = "_lookup"
)

// LookupEntity returns the entity table a "<entity>_lookup" validation refers to.
func LookupEntity(validation string) (string, bool) {
	if !strings.HasSuffix(validation, lookupSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(validation, lookupSuffix)
	return name, name != ""
}

// TransitionRule moves a session from one screen to another on an attention key.
// A rule without To is a guard: when it matches, the session stays and Error is shown.
type TransitionRule struct {
	From       string      `json:"from" yaml:"from"`
	Key        string      `json:"key" yaml:"key"`
	Requires   []string    `json:"requires,omitempty" yaml:"requires,omitempty"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Validation string      `json:"validation,omitempty" yaml:"validation,omitempty"`
	To         string      `json:"to,omitempty" yaml:"to,omitempty"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// IsGuard reports whether the rule keeps the session on its screen.
func (r TransitionRule) IsGuard() bool { return r.To == "" }

// Matches reports whether the rule's conditions hold for the submission.
func (r TransitionRule) Matches(submitted map[string]string) bool {
	for _, c := range r.Conditions {
		if !c.Holds(submitted) {
			return false
		}
	}
	return true
}

// Missing returns the required fields absent or blank in the submission.
func (r TransitionRule) Missing(submitted map[string]string) []string {
	var missing []string
	for _, name := range r.Requires {
		if strings.TrimSpace(submitted[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Credential is a valid user/password pair.
type Credential struct {
	UserID   string `json:"user_id" yaml:"user_id"`
	Password string `json:"password" yaml:"password"`
}

// EntityRecord is one looked-up record, merged into session data on success.
type EntityRecord map[string]string

// EntityTable maps key values of one field to records.
type EntityTable struct {
	Key      string                  `json:"key" yaml:"key"`
	NotFound string                  `json:"not_found,omitempty" yaml:"not_found,omitempty"`
	Records  map[string]EntityRecord `json:"records" yaml:"records"`
}

// NavigationConfig drives the host side.
type NavigationConfig struct {
	InitialScreen string                 `json:"initial_screen" yaml:"initial_screen"`
	Credentials   []Credential           `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Entities      map[string]EntityTable `json:"entities,omitempty" yaml:"entities,omitempty"`
	Rules         []TransitionRule       `json:"rules" yaml:"rules"`
}

// Validate checks the configuration against the catalog and compiles patterns.
// It must be called before the configuration is used.
func (n *NavigationConfig) Validate(c *Catalog) error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if n.InitialScreen == "" {
		add("initial_screen is required")
	} else if _, ok := c.Screen(n.InitialScreen); !ok {
		add("initial_screen %q is not in the catalog", n.InitialScreen)
	}

	for name, table := range n.Entities {
		if table.Key == "" {
			add("entity %q: key is required", name)
		}
	}

	for i := range n.Rules {
		r := &n.Rules[i]
		label := fmt.Sprintf("rule %d (%s/%s)", i+1, r.From, r.Key)
		from, ok := c.Screen(r.From)
		if !ok {
			add("%s: from screen %q is not in the catalog", label, r.From)
		}
		if r.Key == "" {
			add("%s: key is required", label)
		}
		if r.To != "" {
			if _, ok := c.Screen(r.To); !ok {
				add("%s: to screen %q is not in the catalog", label, r.To)
			}
		} else if r.Error == "" {
			add("%s: a rule without a target must declare an error", label)
		}
		if from != nil {
			for _, name := range r.Requires {
				if _, ok := from.Field(name); !ok {
					add("%s: required field %q is not on screen %q", label, name, r.From)
				}
			}
		}
		for j := range r.Conditions {
			cond := &r.Conditions[j]
			if from != nil {
				if _, ok := from.Field(cond.Field); !ok {
					add("%s: condition field %q is not on screen %q", label, cond.Field, r.From)
				}
			}
			switch cond.Op {
			case OpEquals, OpNotEquals, OpPresent:
			case OpMatches:
				re, err := regexp.Compile(cond.Value)
				if err != nil {
					add("%s: invalid pattern %q: %v", label, cond.Value, err)
				}
				cond.pattern = re
			default:
				add("%s: unknown condition op %q", label, cond.Op)
			}
		}
		switch {
		case r.Validation == "", r.Validation == ValidationCredentials:
		default:
			entity, ok := LookupEntity(r.Validation)
			if !ok {
				add("%s: unknown validation %q", label, r.Validation)
			} else if _, exists := n.Entities[entity]; !exists {
				add("%s: validation %q refers to undefined entity %q", label, r.Validation, entity)
			}
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Source: "navigation", Problems: problems}
	}
	return nil
}

// Candidates returns the rules declared for a screen and key, in declaration order.
func (n *NavigationConfig) Candidates(screenID, key string) []TransitionRule {
	var out []TransitionRule
	for _, r := range n.Rules {
		if r.From == screenID && strings.EqualFold(r.Key, key) {
			out = append(out, r)
		}
	}
	return out
}
