package datastream

import (
	"fmt"
	"strings"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/ebcdic"
)

// FieldWrite is one modified field carried in client input.
// Address is the field's first data cell.
type FieldWrite struct {
	Address int
	Value   string
}

// Input is a decoded client submission.
type Input struct {
	AID    byte
	Cursor int
	Fields []FieldWrite
}

// Key returns the attention key name.
func (in *Input) Key() string { return AIDName(in.AID) }

// EncodeInput frames a client submission.
func EncodeInput(in Input) []byte {
	cursor := EncodeAddress(in.Cursor)
	body := []byte{in.AID, cursor[0], cursor[1]}
	for _, f := range in.Fields {
		a := EncodeAddress(f.Address)
		body = append(body, OrderSBA, a[0], a[1])
		for _, r := range f.Value {
			b := ebcdic.EncodeRune(r)
			if b < ebcdic.Space {
				b = ebcdic.Space
			}
			body = append(body, b)
		}
	}
	return Frame(OpClientInput, body)
}

// DecodeInput parses a client submission. Field values have trailing blanks and
// nulls removed.
func DecodeInput(record []byte) (*Input, error) {
	op, body, err := Unframe(record)
	if err != nil {
		return nil, err
	}
	if op != OpClientInput {
		return nil, &domain.DecodeError{Offset: 3, Reason: fmt.Sprintf("expected client input, got opcode %#02x", op)}
	}
	if len(body) == 0 {
		return nil, &domain.DecodeError{Offset: EnvelopeSize, Reason: "missing attention identifier"}
	}

	in := &Input{AID: body[0]}
	if len(body) == 1 {
		return in, nil
	}
	if len(body) < 3 {
		return nil, &domain.DecodeError{Offset: EnvelopeSize + 1, Reason: "truncated cursor address"}
	}
	in.Cursor = DecodeAddress(body[1], body[2])

	i := 3
	for i < len(body) {
		if body[i] != OrderSBA {
			return nil, &domain.DecodeError{Offset: EnvelopeSize + i, Order: body[i], Reason: "expected set-buffer-address before field data"}
		}
		if i+2 >= len(body) {
			return nil, &domain.DecodeError{Offset: EnvelopeSize + i, Order: body[i], Reason: "truncated order"}
		}
		addr := DecodeAddress(body[i+1], body[i+2])
		if addr >= domain.BufferSize {
			return nil, &domain.DecodeError{Offset: EnvelopeSize + i, Order: body[i], Reason: fmt.Sprintf("address %d outside buffer", addr)}
		}
		i += 3
		start := i
		for i < len(body) && body[i] != OrderSBA {
			i++
		}
		value := strings.TrimRight(ebcdic.Decode(body[start:i]), " \x00")
		in.Fields = append(in.Fields, FieldWrite{Address: addr, Value: value})
	}
	return in, nil
}
