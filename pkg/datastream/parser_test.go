package datastream

import (
	"testing"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/ebcdic"
	"github.com/aretw0/greenscreen/pkg/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loanDetails() *domain.ScreenDefinition {
	return &domain.ScreenDefinition{
		ID:         "loan_details",
		Identifier: domain.Identifier{Row: 1, Col: 2, Text: "LOAN DETAILS"},
		Text: []domain.StaticText{
			{Row: 1, Col: 2, Text: "LOAN DETAILS"},
			{Row: 5, Col: 10, Text: "BORROWER:"},
		},
		Fields: []domain.FieldDefinition{
			{Name: "borrower_name", Kind: domain.FieldDisplay, Row: 5, Col: 35, Length: 30},
			{Name: "principal_balance", Kind: domain.FieldDisplay, Row: 6, Col: 35, Length: 6},
			{Name: "command", Kind: domain.FieldInput, Row: 22, Col: 10, Length: 4},
			{Name: "pin", Kind: domain.FieldInput, Row: 22, Col: 30, Length: 4, Attributes: []string{"hidden"}},
		},
	}
}

func TestWriteScreen_RoundTrip(t *testing.T) {
	def := loanDetails()
	values := map[string]string{
		"borrower_name":     "JANE Q BORROWER",
		"principal_balance": "1234567.89",
	}
	rec := WriteScreen(def, values, "")

	buf, err := DecodeScreen(rec, nil)
	require.NoError(t, err)

	assert.True(t, screen.Is(buf, def))
	name, _ := def.Field("borrower_name")
	assert.Equal(t, "JANE Q BORROWER", buf.ReadField(name))
	assert.Equal(t, 30, len([]rune(buf.Read(5, 35, 30))))
	bal, _ := def.Field("principal_balance")
	assert.Equal(t, "123456", buf.ReadField(bal), "values longer than the field are truncated")
	assert.Equal(t, "BORROWER:", buf.Read(5, 10, 9))

	// Cursor lands on the first input field.
	assert.Equal(t, screen.Position{Row: 22, Col: 10}, buf.CursorPosition())

	// One span per definition plus the protected attribute closing each of them.
	spans := buf.Fields()
	require.Len(t, spans, 8)
	byStart := map[int]screen.FieldSpan{}
	for _, s := range spans {
		byStart[s.DataAddress()] = s
	}
	for _, f := range def.Fields {
		span, ok := byStart[f.Address()]
		require.True(t, ok, f.Name)
		assert.Equal(t, f.Length, span.Length, f.Name)
	}
	assert.True(t, byStart[domain.Address(5, 35)].Protected())
	assert.False(t, byStart[domain.Address(22, 10)].Protected())
	assert.True(t, byStart[domain.Address(22, 30)].Hidden())
	assert.True(t, byStart[domain.Address(22, 15)].Protected(), "input closed after its data")
}

func TestWriteScreen_SpansMatchDeclaredLengths(t *testing.T) {
	def := &domain.ScreenDefinition{
		ID:         "layout",
		Identifier: domain.Identifier{Row: 1, Col: 2, Text: "LAYOUT"},
		Fields: []domain.FieldDefinition{
			{Name: "first_col", Kind: domain.FieldInput, Row: 6, Col: 1, Length: 8},
			{Name: "user_id", Kind: domain.FieldInput, Row: 10, Col: 30, Length: 8},
			{Name: "left", Kind: domain.FieldInput, Row: 12, Col: 10, Length: 5},
			{Name: "right", Kind: domain.FieldInput, Row: 12, Col: 16, Length: 5},
			{Name: "tail", Kind: domain.FieldDisplay, Row: 14, Col: 71, Length: 10},
		},
	}
	_, err := domain.NewCatalog(*def)
	require.NoError(t, err, "layout is valid")

	buf, err := DecodeScreen(WriteScreen(def, nil, ""), nil)
	require.NoError(t, err)
	for _, f := range def.Fields {
		span, ok := buf.FieldAt(f.Address())
		require.True(t, ok, f.Name)
		assert.Equal(t, f.AttributeAddress(), span.Start, f.Name)
		assert.Equal(t, f.Length, span.Length, f.Name)
		_, inside := buf.FieldAt(f.Address() + f.Length - 1)
		assert.True(t, inside, f.Name)
	}
	// A field starting in column 1 keeps its attribute on the previous row.
	span, _ := buf.FieldAt(domain.Address(6, 1))
	row, col := domain.RowCol(span.Start)
	assert.Equal(t, 5, row)
	assert.Equal(t, domain.Cols, col)

	// Adjacent fields share the cell between them, so no extra span appears there.
	left, _ := buf.FieldAt(domain.Address(12, 10))
	right, _ := buf.FieldAt(domain.Address(12, 16))
	assert.Equal(t, left.Start+left.Length+1, right.Start)
	assert.False(t, right.Protected())
}

func TestWriteScreen_PaintsIdentifier(t *testing.T) {
	def := loanDetails()
	def.Text = def.Text[1:]
	buf, err := DecodeScreen(WriteScreen(def, nil, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, "LOAN DETAILS", buf.Read(1, 2, 12))
	assert.True(t, screen.Is(buf, def))
}

func TestWriteScreen_ErrorLine(t *testing.T) {
	rec := WriteScreen(loanDetails(), nil, "LOAN NOT FOUND")
	buf, err := DecodeScreen(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "LOAN NOT FOUND", buf.Read(domain.ErrorRow, domain.ErrorCol, 14))
	f, ok := buf.FieldAt(domain.Address(domain.ErrorRow, domain.ErrorCol))
	require.True(t, ok)
	assert.True(t, f.Protected())
	assert.True(t, f.Intensified())
}

func TestWriteScreen_ControlCharactersBecomeBlanks(t *testing.T) {
	def := loanDetails()
	rec := WriteScreen(def, map[string]string{"borrower_name": "A\x11B\x1dC"}, "")
	buf, err := DecodeScreen(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "A B C", buf.Read(5, 35, 5))
}

func TestDecodeScreen_RejectsShortRecord(t *testing.T) {
	_, err := DecodeScreen([]byte{0x00, 0x05, 0x00}, nil)
	var decErr *domain.DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeScreen_RejectsLengthMismatch(t *testing.T) {
	rec := Frame(OpHostWrite, []byte{CmdEraseWrite, DefaultWCC})
	rec = append(rec, 0x40)
	_, err := DecodeScreen(rec, nil)
	assert.Error(t, err)
}

func TestDecodeScreen_RejectsUnsupportedOrders(t *testing.T) {
	for _, order := range []byte{OrderSFE, OrderMF} {
		rec := Frame(OpHostWrite, []byte{CmdEraseWrite, DefaultWCC, 0xC1, order, 0x01, 0xC0, 0x20})
		_, err := DecodeScreen(rec, nil)
		var decErr *domain.DecodeError
		require.ErrorAs(t, err, &decErr)
		assert.Equal(t, order, decErr.Order)
		assert.Equal(t, EnvelopeSize+3, decErr.Offset)
	}
}

func TestDecodeScreen_TruncatedOrder(t *testing.T) {
	rec := Frame(OpHostWrite, []byte{CmdEraseWrite, DefaultWCC, OrderSBA, 0x40})
	_, err := DecodeScreen(rec, nil)
	var decErr *domain.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, decErr.Reason, "truncated")
}

func TestDecodeScreen_RepeatToAddress(t *testing.T) {
	w := NewScreenWriter(CmdEraseWrite).SetAddress(domain.Address(3, 1)).RepeatTo(domain.Address(3, 11), '-').Text("X")
	buf, err := DecodeScreen(w.Record(), nil)
	require.NoError(t, err)
	assert.Equal(t, "----------X", buf.Read(3, 1, 11))
}

func TestDecodeScreen_SkipsAttributeAndEraseOrders(t *testing.T) {
	stop := EncodeAddress(100)
	body := []byte{CmdEraseWrite, DefaultWCC, OrderSA, 0x41, 0xF2, OrderEUA, stop[0], stop[1]}
	body = append(body, ebcdic.Encode("OK")...)
	buf, err := DecodeScreen(Frame(OpHostWrite, body), nil)
	require.NoError(t, err)
	assert.Equal(t, "OK", buf.Read(1, 1, 2))
}

func TestDecodeScreen_TextWrapsAtLastCell(t *testing.T) {
	w := NewScreenWriter(CmdEraseWrite).SetAddress(domain.Address(24, 79)).Text("ABCD")
	buf, err := DecodeScreen(w.Record(), nil)
	require.NoError(t, err)
	assert.Equal(t, "AB", buf.Read(24, 79, 2))
	assert.Equal(t, "CD", buf.Read(1, 1, 2))
}

func TestDecodeScreen_PlainWritePatchesCopy(t *testing.T) {
	first, err := DecodeScreen(NewScreenWriter(CmdEraseWrite).Text("HELLO").Record(), nil)
	require.NoError(t, err)

	second, err := DecodeScreen(NewScreenWriter(CmdWrite).SetAddress(0).Text("J").Record(), first)
	require.NoError(t, err)
	assert.Equal(t, "JELLO", second.Read(1, 1, 5))
	assert.Equal(t, "HELLO", first.Read(1, 1, 5), "previous buffer is untouched")
}

func TestDecodeScreen_RejectsClientInput(t *testing.T) {
	_, err := DecodeScreen(EncodeInput(Input{AID: AIDEnter}), nil)
	assert.Error(t, err)
}
