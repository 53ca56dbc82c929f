package domain

import (
	"fmt"
	"slices"
	"strings"
)

// FieldKind distinguishes fields the operator types into from fields the host fills.
type FieldKind string

const (
	FieldInput   FieldKind = "input"
	FieldDisplay FieldKind = "display"
)

// Well-known field attributes.
const (
	AttrHidden      = "hidden"
	AttrSensitive   = "sensitive"
	AttrNumeric     = "numeric"
	AttrIntensified = "intensified"
)

// Identifier is the text a screen always shows at a fixed position.
type Identifier struct {
	Row  int    `json:"row" yaml:"row"`
	Col  int    `json:"col" yaml:"col"`
	Text string `json:"text" yaml:"text"`
}

// FieldDefinition describes one field of a screen.
type FieldDefinition struct {
	Name       string    `json:"name" yaml:"name"`
	Kind       FieldKind `json:"type" yaml:"type"`
	Row        int       `json:"row" yaml:"row"`
	Col        int       `json:"col" yaml:"col"`
	Length     int       `json:"length" yaml:"length"`
	Attributes []string  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Default    string    `json:"default,omitempty" yaml:"default,omitempty"`
}

// Has reports whether the field carries the attribute.
func (f FieldDefinition) Has(attr string) bool {
	return slices.ContainsFunc(f.Attributes, func(a string) bool { return strings.EqualFold(a, attr) })
}

// IsInput reports whether the field is operator-editable.
func (f FieldDefinition) IsInput() bool { return f.Kind == FieldInput }

// IsHidden reports whether the field renders without echo.
func (f FieldDefinition) IsHidden() bool { return f.Has(AttrHidden) }

// IsSensitive reports whether the field's value must never be retained.
// Hidden fields are always sensitive.
func (f FieldDefinition) IsSensitive() bool { return f.Has(AttrSensitive) || f.Has(AttrHidden) }

// Address is the buffer address of the field's first data cell.
func (f FieldDefinition) Address() int { return Address(f.Row, f.Col) }

// Contains reports whether the 0-based address falls inside the field's data cells.
func (f FieldDefinition) Contains(addr int) bool {
	start := f.Address()
	return addr >= start && addr < start+f.Length
}

// AttributeAddress is the cell holding the field's start-field attribute, just before its data.
func (f FieldDefinition) AttributeAddress() int {
	return (f.Address() - 1 + BufferSize) % BufferSize
}

// End returns the cell just past the field's data and whether that cell must carry a
// closing attribute. A field that runs to the last column needs none.
func (f FieldDefinition) End() (int, bool) {
	return f.Address() + f.Length, f.Col+f.Length-1 < Cols
}

// occupies reports whether addr is the field's attribute cell, one of its data cells,
// or its closing cell.
func (f FieldDefinition) occupies(addr int) bool {
	if addr == f.AttributeAddress() || f.Contains(addr) {
		return true
	}
	end, closed := f.End()
	return closed && addr == end
}

// StaticText is protected literal text painted on a screen.
type StaticText struct {
	Row  int    `json:"row" yaml:"row"`
	Col  int    `json:"col" yaml:"col"`
	Text string `json:"text" yaml:"text"`
}

// ScreenDefinition is a catalog entry.
type ScreenDefinition struct {
	ID         string            `json:"screen_id" yaml:"screen_id"`
	Identifier Identifier        `json:"identifier" yaml:"identifier"`
	Fields     []FieldDefinition `json:"fields" yaml:"fields"`
	Text       []StaticText      `json:"text,omitempty" yaml:"text,omitempty"`
}

// Field looks a field up by name.
func (s *ScreenDefinition) Field(name string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldAt returns the field whose data cells contain the address.
func (s *ScreenDefinition) FieldAt(addr int) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Contains(addr) {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FirstInput returns the first input field in screen order.
func (s *ScreenDefinition) FirstInput() (FieldDefinition, bool) {
	var first FieldDefinition
	found := false
	for _, f := range s.Fields {
		if !f.IsInput() {
			continue
		}
		if !found || f.Address() < first.Address() {
			first, found = f, true
		}
	}
	return first, found
}

// Catalog is the immutable, validated set of screens.
// It is safe for concurrent reads once constructed.
type Catalog struct {
	screens []*ScreenDefinition
	byID    map[string]*ScreenDefinition
}

// NewCatalog validates the definitions and builds a catalog.
// All problems are collected and returned as a single *ConfigError.
func NewCatalog(screens ...ScreenDefinition) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*ScreenDefinition, len(screens))}
	var problems []string

	for i := range screens {
		s := screens[i]
		problems = append(problems, validateScreen(&s)...)
		if s.ID == "" {
			continue
		}
		if _, dup := c.byID[s.ID]; dup {
			problems = append(problems, fmt.Sprintf("screen %q: duplicate screen id", s.ID))
			continue
		}
		c.byID[s.ID] = &s
		c.screens = append(c.screens, &s)
	}

	problems = append(problems, ambiguousIdentifiers(c.screens)...)
	if len(problems) > 0 {
		return nil, &ConfigError{Source: "catalog", Problems: problems}
	}
	return c, nil
}

// Screen returns the definition with the given id.
func (c *Catalog) Screen(id string) (*ScreenDefinition, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Screens returns every definition in declaration order.
func (c *Catalog) Screens() []*ScreenDefinition {
	return slices.Clone(c.screens)
}

// Len returns the number of screens.
func (c *Catalog) Len() int { return len(c.screens) }

func validateScreen(s *ScreenDefinition) []string {
	var out []string
	label := s.ID
	if label == "" {
		out = append(out, "screen with empty screen_id")
		label = "?"
	}
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf("screen %q: ", label)+fmt.Sprintf(format, args...))
	}

	id := s.Identifier
	if strings.TrimSpace(id.Text) == "" {
		add("identifier text is empty")
	}
	if !InBounds(id.Row, id.Col) || id.Col+len([]rune(id.Text))-1 > Cols {
		add("identifier at (%d,%d) is out of bounds", id.Row, id.Col)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		switch {
		case f.Name == "":
			add("field with empty name")
			continue
		case seen[f.Name]:
			add("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Kind != FieldInput && f.Kind != FieldDisplay {
			add("field %q: unknown type %q", f.Name, f.Kind)
		}
		if f.Length < 1 {
			add("field %q: length must be positive", f.Name)
		}
		if !InBounds(f.Row, f.Col) || f.Col+f.Length-1 > Cols {
			add("field %q: position (%d,%d) length %d is out of bounds", f.Name, f.Row, f.Col, f.Length)
		}
	}
	for _, t := range s.Text {
		if !InBounds(t.Row, t.Col) || t.Col+len([]rune(t.Text))-1 > Cols {
			add("text %q at (%d,%d) is out of bounds", t.Text, t.Row, t.Col)
		}
	}
	if len(out) == 0 {
		for _, p := range layoutProblems(s) {
			add("%s", p)
		}
	}
	return out
}

// layoutProblems checks that fields, static text and the identifier can all be painted
// without one clobbering another, and that the error line stays free.
// It assumes every position is already in bounds.
func layoutProblems(s *ScreenDefinition) []string {
	var out []string
	report := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}
	for i, f := range s.Fields {
		if attrRow, _ := RowCol(f.AttributeAddress()); f.Row == ErrorRow || attrRow == ErrorRow {
			report("field %q: row %d is reserved for the error line", f.Name, ErrorRow)
		}
		for _, g := range s.Fields[i+1:] {
			if fieldsCollide(f, g) {
				report("fields %q and %q overlap", f.Name, g.Name)
			}
		}
	}

	texts := append([]StaticText{{Row: s.Identifier.Row, Col: s.Identifier.Col, Text: s.Identifier.Text}}, s.Text...)
	for i, t := range texts {
		what := fmt.Sprintf("text %q", t.Text)
		if i == 0 {
			what = fmt.Sprintf("identifier %q", t.Text)
		}
		if t.Row == ErrorRow {
			report("%s: row %d is reserved for the error line", what, ErrorRow)
		}
		start := Address(t.Row, t.Col)
		for _, f := range s.Fields {
			for addr := start; addr < start+len([]rune(t.Text)); addr++ {
				if f.occupies(addr) {
					report("%s at (%d,%d) overlaps field %q", what, t.Row, t.Col, f.Name)
					break
				}
			}
		}
	}
	return out
}

// fieldsCollide reports whether painting both fields would let one overwrite the other.
// A closing cell can only land inside another field when these cells already collide.
func fieldsCollide(f, g FieldDefinition) bool {
	return f.Contains(g.AttributeAddress()) || g.Contains(f.AttributeAddress()) ||
		f.Address() < g.Address()+g.Length && g.Address() < f.Address()+f.Length
}

// ambiguousIdentifiers flags identifier pairs where one could match the other's screen:
// one identifier's cells lie inside the other's and agree with it, ignoring case.
func ambiguousIdentifiers(screens []*ScreenDefinition) []string {
	var out []string
	for i, a := range screens {
		for _, b := range screens[i+1:] {
			if shadows(a.Identifier, b.Identifier) || shadows(b.Identifier, a.Identifier) {
				out = append(out, fmt.Sprintf("screens %q and %q have ambiguous identifiers %q / %q",
					a.ID, b.ID, a.Identifier.Text, b.Identifier.Text))
			}
		}
	}
	return out
}

// shadows reports whether a screen painting outer would also satisfy inner.
func shadows(outer, inner Identifier) bool {
	if outer.Row != inner.Row {
		return false
	}
	o := []rune(strings.ToUpper(strings.TrimRight(outer.Text, " ")))
	in := []rune(strings.ToUpper(strings.TrimRight(inner.Text, " ")))
	off := inner.Col - outer.Col
	if len(in) == 0 || off < 0 || off+len(in) > len(o) {
		return false
	}
	return string(o[off:off+len(in)]) == string(in)
}
