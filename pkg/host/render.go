package host

import (
	"strings"

	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
)

// Render paints a screen for the session. Display fields show session data;
// input fields show their default, never a retained value.
func Render(def *domain.ScreenDefinition, state *domain.SessionState, errText string) []byte {
	values := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		if f.IsInput() {
			values[f.Name] = f.Default
			continue
		}
		if f.IsSensitive() {
			continue
		}
		values[f.Name] = state.Data[f.Name]
	}
	return datastream.WriteScreen(def, values, errText)
}

// collect maps client field writes onto the screen's input fields.
// Writes to unknown or protected positions are dropped.
func collect(def *domain.ScreenDefinition, in *datastream.Input) (map[string]string, []int) {
	submitted := make(map[string]string, len(in.Fields))
	var dropped []int
	for _, w := range in.Fields {
		f, ok := def.FieldAt(w.Address)
		if !ok || !f.IsInput() {
			dropped = append(dropped, w.Address)
			continue
		}
		value := w.Value
		if runes := []rune(value); len(runes) > f.Length {
			value = string(runes[:f.Length])
		}
		submitted[f.Name] = strings.TrimRight(value, " \x00")
	}
	return submitted, dropped
}
