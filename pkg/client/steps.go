package client

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/screen"
)

func (e *Engine) navigate(ctx context.Context, term Terminal, step string, nav *domain.NavigateStep, resolve Lookup) error {
	buf := term.Screen()
	def, ok := screen.Identify(e.catalog, buf)
	if !ok {
		return &domain.StepError{Step: step, Code: domain.CodeUnknownScreen, Reason: "current screen matches no catalog entry"}
	}

	aid, err := datastream.ParseAID(nav.Key)
	if err != nil {
		return &domain.StepError{Step: step, Code: domain.CodeConfigError, Reason: err.Error()}
	}

	fields := make([]domain.FieldDefinition, 0, len(nav.Fields))
	var missing []string
	for name := range nav.Fields {
		f, ok := def.Field(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		fields = append(fields, f)
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &domain.StepError{
			Step:    step,
			Code:    domain.CodeFieldNotFound,
			Reason:  fmt.Sprintf("fields not on screen %q: %s", def.ID, strings.Join(missing, ", ")),
			Missing: missing,
		}
	}
	slices.SortFunc(fields, func(a, b domain.FieldDefinition) int { return a.Address() - b.Address() })

	writes := make([]datastream.FieldWrite, 0, len(fields))
	for _, f := range fields {
		value, unresolved := Interpolate(nav.Fields[f.Name], resolve)
		if len(unresolved) > 0 {
			return &domain.StepError{
				Step:    step,
				Code:    domain.CodeUnresolvedPlaceholder,
				Reason:  fmt.Sprintf("field %q: unresolved placeholders %s", f.Name, strings.Join(unresolved, ", ")),
				Missing: unresolved,
			}
		}
		value, err := SanitizeValue(value)
		if err != nil {
			return &domain.StepError{Step: step, Code: domain.CodeConfigError, Reason: fmt.Sprintf("field %q: %v", f.Name, err)}
		}
		padded := buf.Fill(f.Row, f.Col, f.Length, value)
		writes = append(writes, datastream.FieldWrite{Address: f.Address(), Value: padded})
	}

	if err := term.Submit(ctx, aid, writes); err != nil {
		return err
	}

	if nav.Expect == "" {
		return nil
	}
	next := term.Screen()
	cur, ok := screen.Identify(e.catalog, next)
	if ok && cur.ID == nav.Expect {
		return nil
	}
	got := "unknown screen"
	if ok {
		got = fmt.Sprintf("screen %q", cur.ID)
	}
	reason := fmt.Sprintf("expected screen %q, got %s", nav.Expect, got)
	if msg := errorLine(next); msg != "" {
		reason += fmt.Sprintf(" (host says %q)", msg)
	}
	return &domain.StepError{Step: step, Code: domain.CodeScreenMismatch, Reason: reason}
}

func (e *Engine) scrape(term Terminal, step string, sc *domain.ScrapeStep, out map[string]string) error {
	buf := term.Screen()
	def, err := e.screenFor(buf, step, sc.Screen)
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range sc.Fields {
		f, ok := def.Field(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out[name] = buf.ReadField(f)
	}
	if len(missing) > 0 {
		return &domain.StepError{
			Step:    step,
			Code:    domain.CodeFieldNotFound,
			Reason:  fmt.Sprintf("fields not defined on screen %q: %s", def.ID, strings.Join(missing, ", ")),
			Missing: missing,
		}
	}
	return nil
}

func (e *Engine) assert(term Terminal, step string, as *domain.AssertStep, resolve Lookup) error {
	buf := term.Screen()

	var def *domain.ScreenDefinition
	if as.Screen != "" || len(as.Fields) > 0 {
		var err error
		if def, err = e.screenFor(buf, step, as.Screen); err != nil {
			return err
		}
	}

	if as.NoError != nil {
		row := as.NoError.Row
		if row < 1 || row > domain.Rows {
			row = domain.ErrorRow
		}
		text := strings.TrimSpace(buf.Row(row))
		want := strings.TrimSpace(as.NoError.Text)
		switch {
		case want == "" && text != "":
			return &domain.StepError{Step: step, Code: domain.CodeErrorTextDetected, Reason: fmt.Sprintf("row %d shows %q", row, text)}
		case want != "" && strings.Contains(strings.ToUpper(text), strings.ToUpper(want)):
			return &domain.StepError{Step: step, Code: domain.CodeErrorTextDetected, Reason: fmt.Sprintf("row %d shows %q", row, text)}
		}
	}

	var failures, missing []string
	for _, fa := range as.Fields {
		f, ok := def.Field(fa.Field)
		if !ok {
			missing = append(missing, fa.Field)
			continue
		}
		want, unresolved := Interpolate(fa.Value, resolve)
		if len(unresolved) > 0 {
			return &domain.StepError{
				Step:    step,
				Code:    domain.CodeUnresolvedPlaceholder,
				Reason:  fmt.Sprintf("assertion on %q: unresolved placeholders %s", fa.Field, strings.Join(unresolved, ", ")),
				Missing: unresolved,
			}
		}
		got := buf.ReadField(f)
		if !Compare(fa.Op, got, want) {
			failures = append(failures, fmt.Sprintf("%s %s %q (got %q)", fa.Field, fa.Op, want, got))
		}
	}
	if len(missing) > 0 {
		return &domain.StepError{
			Step:    step,
			Code:    domain.CodeFieldNotFound,
			Reason:  fmt.Sprintf("fields not defined on screen %q: %s", def.ID, strings.Join(missing, ", ")),
			Missing: missing,
		}
	}
	if len(failures) > 0 {
		return &domain.StepError{Step: step, Code: domain.CodeAssertionFailed, Reason: strings.Join(failures, "; ")}
	}
	return nil
}

// screenFor resolves the definition a step reads through: the named screen,
// which must be showing, or the identified current screen.
func (e *Engine) screenFor(buf *screen.Buffer, step, id string) (*domain.ScreenDefinition, error) {
	if id == "" {
		def, ok := screen.Identify(e.catalog, buf)
		if !ok {
			return nil, &domain.StepError{Step: step, Code: domain.CodeUnknownScreen, Reason: "current screen matches no catalog entry"}
		}
		return def, nil
	}
	def, ok := e.catalog.Screen(id)
	if !ok {
		return nil, &domain.StepError{Step: step, Code: domain.CodeConfigError, Reason: fmt.Sprintf("screen %q is not in the catalog", id)}
	}
	if !screen.Is(buf, def) {
		got := "unknown screen"
		if cur, ok := screen.Identify(e.catalog, buf); ok {
			got = fmt.Sprintf("screen %q", cur.ID)
		}
		return nil, &domain.StepError{Step: step, Code: domain.CodeScreenMismatch, Reason: fmt.Sprintf("expected screen %q, showing %s", id, got)}
	}
	return def, nil
}

// Compare applies an assertion operator. Comparisons are case-sensitive on
// values with surrounding blanks removed.
func Compare(op domain.CompareOp, got, want string) bool {
	got = strings.TrimSpace(got)
	want = strings.TrimSpace(want)
	switch op {
	case domain.CompareEquals:
		return got == want
	case domain.CompareNotEquals:
		return got != want
	case domain.CompareContains:
		return strings.Contains(got, want)
	case domain.CompareStartsWith:
		return strings.HasPrefix(got, want)
	case domain.CompareEndsWith:
		return strings.HasSuffix(got, want)
	case domain.CompareEmpty:
		return got == ""
	case domain.CompareNotEmpty:
		return got != ""
	}
	return false
}

func errorLine(buf *screen.Buffer) string {
	return strings.TrimSpace(buf.Row(domain.ErrorRow))
}
