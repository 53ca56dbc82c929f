package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseVars turns key=value pairs into a map. Later pairs win.
func ParseVars(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid variable %q: want key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// LoadVarFile reads a flat YAML (or JSON) mapping of variables.
// Scalar values are stringified; nested values are rejected.
func LoadVarFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read var file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse var file %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("var file %s: %q must be a scalar", path, k)
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out, nil
}

// MergeVars loads the var file, if any, and applies overrides on top.
func MergeVars(file string, overrides map[string]string) (map[string]string, error) {
	vars := map[string]string{}
	if file != "" {
		loaded, err := LoadVarFile(file)
		if err != nil {
			return nil, err
		}
		vars = loaded
	}
	for k, v := range overrides {
		vars[k] = v
	}
	return vars, nil
}
