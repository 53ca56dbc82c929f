// Package screen holds the 24x80 presentation buffer and screen identification.
package screen

import (
	"strings"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// Field attribute bits as carried in a start-field order.
const (
	AttrProtected   byte = 0x20
	AttrNumeric     byte = 0x10
	AttrNonDisplay  byte = 0x0C
	AttrIntensified byte = 0x08
	AttrModified    byte = 0x01
)

// FieldSpan is a field discovered while decoding a record.
// Start is the address of the attribute cell; the data follows it.
type FieldSpan struct {
	Start     int
	Length    int
	Attribute byte
}

// DataAddress is the address of the first data cell.
func (f FieldSpan) DataAddress() int { return (f.Start + 1) % domain.BufferSize }

// Protected reports whether the operator may not type into the field.
func (f FieldSpan) Protected() bool { return f.Attribute&AttrProtected != 0 }

// Hidden reports whether the field renders without echo.
func (f FieldSpan) Hidden() bool { return f.Attribute&AttrNonDisplay == AttrNonDisplay }

// Intensified reports whether the field renders bright.
func (f FieldSpan) Intensified() bool { return f.Attribute&AttrNonDisplay == AttrIntensified }

// Position is a 1-based screen coordinate.
type Position struct {
	Row int
	Col int
}

// Buffer is the emulated display: 1,920 cells, a write address and a display cursor.
// A Buffer is owned by one goroutine; Clone before sharing.
type Buffer struct {
	cells  [domain.BufferSize]rune
	attrs  map[int]byte
	addr   int
	cursor int
	fields []FieldSpan
}

// NewBuffer returns a blank buffer with the cursor at (1,1).
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.Clear()
	return b
}

// Clear blanks every cell, drops field starts and homes both addresses.
func (b *Buffer) Clear() {
	for i := range b.cells {
		b.cells[i] = ' '
	}
	b.attrs = make(map[int]byte)
	b.addr = 0
	b.cursor = 0
	b.fields = nil
}

// Clone returns an independent copy.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.attrs = make(map[int]byte, len(b.attrs))
	for k, v := range b.attrs {
		c.attrs[k] = v
	}
	c.fields = append([]FieldSpan(nil), b.fields...)
	return &c
}

// WriteAddress is the address the next character lands on.
func (b *Buffer) WriteAddress() int { return b.addr }

// SetWriteAddress moves the write address, wrapping into the buffer.
func (b *Buffer) SetWriteAddress(addr int) {
	b.addr = wrap(addr)
}

// Put stores a character at the write address and advances it.
// Writing past (24,80) wraps to (1,1).
func (b *Buffer) Put(r rune) {
	b.cells[b.addr] = r
	b.addr = wrap(b.addr + 1)
}

// StartField records a field attribute at the write address, blanks that cell and advances.
func (b *Buffer) StartField(attr byte) {
	b.attrs[b.addr] = attr
	b.cells[b.addr] = ' '
	b.addr = wrap(b.addr + 1)
}

// SetCursor places the display cursor.
func (b *Buffer) SetCursor(addr int) { b.cursor = wrap(addr) }

// Cursor returns the display cursor address.
func (b *Buffer) Cursor() int { return b.cursor }

// CursorPosition returns the display cursor as (row, col).
func (b *Buffer) CursorPosition() Position {
	row, col := domain.RowCol(b.cursor)
	return Position{Row: row, Col: col}
}

// ComputeFields derives field spans from the recorded starts.
// A field's data runs from the cell after its attribute to the next start or the
// end of that cell's row, whichever comes first.
func (b *Buffer) ComputeFields() []FieldSpan {
	b.fields = b.fields[:0]
	for addr := 0; addr < domain.BufferSize; addr++ {
		attr, ok := b.attrs[addr]
		if !ok {
			continue
		}
		data := (addr + 1) % domain.BufferSize
		rowEnd := (data/domain.Cols + 1) * domain.Cols
		length := 0
		for next := data; next < rowEnd; next++ {
			if _, start := b.attrs[next]; start {
				break
			}
			length++
		}
		b.fields = append(b.fields, FieldSpan{Start: addr, Length: length, Attribute: attr})
	}
	return b.fields
}

// Fields returns the spans from the last ComputeFields.
func (b *Buffer) Fields() []FieldSpan { return b.fields }

// FieldAt returns the span whose data cells contain the address.
func (b *Buffer) FieldAt(addr int) (FieldSpan, bool) {
	for _, f := range b.fields {
		if off := (addr - f.DataAddress() + domain.BufferSize) % domain.BufferSize; off < f.Length {
			return f, true
		}
	}
	return FieldSpan{}, false
}

// Read returns length characters starting at (row, col), wrapping across rows.
func (b *Buffer) Read(row, col, length int) string {
	if length <= 0 {
		return ""
	}
	out := make([]rune, length)
	start := domain.Address(row, col)
	for i := range out {
		out[i] = b.cells[wrap(start+i)]
	}
	return string(out)
}

// ReadField returns a field's value with trailing blanks trimmed.
func (b *Buffer) ReadField(f domain.FieldDefinition) string {
	return strings.TrimRight(b.Read(f.Row, f.Col, f.Length), " ")
}

// Fill writes value into exactly length cells at (row, col), padding with blanks or truncating.
func (b *Buffer) Fill(row, col, length int, value string) string {
	padded := Pad(value, length)
	start := domain.Address(row, col)
	for i, r := range []rune(padded) {
		b.cells[wrap(start+i)] = r
	}
	return padded
}

// Row returns the 80 characters of a 1-based row.
func (b *Buffer) Row(row int) string {
	return b.Read(row, 1, domain.Cols)
}

// Lines returns all 24 rows.
func (b *Buffer) Lines() []string {
	lines := make([]string, domain.Rows)
	for i := range lines {
		lines[i] = b.Row(i + 1)
	}
	return lines
}

// String renders the buffer as 24 newline-separated rows with trailing blanks trimmed.
func (b *Buffer) String() string {
	lines := b.Lines()
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

// Pad blank-pads or truncates value to exactly length characters.
func Pad(value string, length int) string {
	runes := []rune(value)
	if len(runes) >= length {
		return string(runes[:length])
	}
	return value + strings.Repeat(" ", length-len(runes))
}

func wrap(addr int) int {
	return ((addr % domain.BufferSize) + domain.BufferSize) % domain.BufferSize
}
