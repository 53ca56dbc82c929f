package client

import (
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Lookup resolves a placeholder name.
type Lookup func(name string) (string, bool)

// Interpolate replaces every {{ name }} in s. Names that cannot be resolved
// are returned in order of first appearance and left in place.
func Interpolate(s string, lookup Lookup) (string, []string) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	var unresolved []string
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := lookup(name); ok {
			return v
		}
		seen := false
		for _, u := range unresolved {
			if u == name {
				seen = true
				break
			}
		}
		if !seen {
			unresolved = append(unresolved, name)
		}
		return m
	})
	return out, unresolved
}

// chain resolves from each map in order.
func chain(maps ...map[string]string) Lookup {
	return func(name string) (string, bool) {
		for _, m := range maps {
			if v, ok := m[name]; ok {
				return v, true
			}
		}
		return "", false
	}
}
