package datastream

import (
	"slices"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/ebcdic"
	"github.com/aretw0/greenscreen/pkg/screen"
)

// ScreenWriter accumulates a host write body.
type ScreenWriter struct {
	body []byte
}

// NewScreenWriter starts a body with the given write command and the default WCC.
func NewScreenWriter(cmd byte) *ScreenWriter {
	return &ScreenWriter{body: []byte{cmd, DefaultWCC}}
}

// SetAddress emits a set-buffer-address order. Addresses wrap into the buffer.
func (w *ScreenWriter) SetAddress(addr int) *ScreenWriter {
	a := EncodeAddress(((addr % domain.BufferSize) + domain.BufferSize) % domain.BufferSize)
	w.body = append(w.body, OrderSBA, a[0], a[1])
	return w
}

// StartField emits a start-field order with the given attribute bits.
func (w *ScreenWriter) StartField(attr byte) *ScreenWriter {
	w.body = append(w.body, OrderSF, EncodeAttribute(attr))
	return w
}

// Text emits display characters. Control characters are written as blanks so
// they can never be mistaken for orders.
func (w *ScreenWriter) Text(s string) *ScreenWriter {
	for _, r := range s {
		b := ebcdic.EncodeRune(r)
		if b < ebcdic.Space {
			b = ebcdic.Space
		}
		w.body = append(w.body, b)
	}
	return w
}

// InsertCursor places the display cursor at the current write address.
func (w *ScreenWriter) InsertCursor() *ScreenWriter {
	w.body = append(w.body, OrderIC)
	return w
}

// RepeatTo fills from the current address up to, not including, stop.
func (w *ScreenWriter) RepeatTo(stop int, r rune) *ScreenWriter {
	a := EncodeAddress(stop)
	w.body = append(w.body, OrderRA, a[0], a[1], ebcdic.EncodeRune(r))
	return w
}

// Body returns the unframed body.
func (w *ScreenWriter) Body() []byte { return slices.Clone(w.body) }

// Record returns the body framed as a host write.
func (w *ScreenWriter) Record() []byte { return Frame(OpHostWrite, w.body) }

// FieldAttribute derives the start-field attribute for a field definition.
func FieldAttribute(f domain.FieldDefinition) byte {
	var attr byte
	if !f.IsInput() {
		attr |= screen.AttrProtected
	}
	if f.Has(domain.AttrNumeric) {
		attr |= screen.AttrNumeric
	}
	switch {
	case f.IsHidden():
		attr |= screen.AttrNonDisplay
	case f.Has(domain.AttrIntensified):
		attr |= screen.AttrIntensified
	}
	return attr
}

// WriteScreen renders a full screen: the identifier and static text, every field
// padded or truncated to its length, the error line when errText is set, and the
// cursor on the first input field.
//
// Each field is closed by a protected attribute on the cell after its data unless
// it reaches the last column or another field starts there, so the terminal sees
// exactly the declared length.
func WriteScreen(def *domain.ScreenDefinition, values map[string]string, errText string) []byte {
	w := NewScreenWriter(CmdEraseWrite)

	id := def.Identifier
	w.SetAddress(domain.Address(id.Row, id.Col)).Text(id.Text)
	for _, t := range def.Text {
		w.SetAddress(domain.Address(t.Row, t.Col)).Text(t.Text)
	}

	starts := make(map[int]bool, len(def.Fields))
	for _, f := range def.Fields {
		starts[f.AttributeAddress()] = true
	}
	for _, f := range def.Fields {
		w.SetAddress(f.AttributeAddress()).StartField(FieldAttribute(f))
		w.Text(screen.Pad(values[f.Name], f.Length))
		if end, closed := f.End(); closed && !starts[end] {
			w.StartField(screen.AttrProtected)
		}
	}

	if errText != "" {
		w.SetAddress(domain.Address(domain.ErrorRow, domain.ErrorCol) - 1)
		w.StartField(screen.AttrProtected | screen.AttrIntensified)
		w.Text(screen.Pad(errText, domain.Cols-domain.ErrorCol+1))
	}

	cursor := 0
	if first, ok := def.FirstInput(); ok {
		cursor = first.Address()
	}
	w.SetAddress(cursor).InsertCursor()

	return w.Record()
}
