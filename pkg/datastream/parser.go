package datastream

import (
	"fmt"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/ebcdic"
	"github.com/aretw0/greenscreen/pkg/screen"
)

// orderKind is the closed set of things a body byte can start.
type orderKind int

const (
	kindText orderKind = iota
	kindStartField
	kindSetAddress
	kindInsertCursor
	kindRepeat
	kindSetAttribute
	kindEraseUnprotected
	kindUnsupported
)

func classify(b byte) orderKind {
	switch b {
	case OrderSF:
		return kindStartField
	case OrderSBA:
		return kindSetAddress
	case OrderIC:
		return kindInsertCursor
	case OrderRA:
		return kindRepeat
	case OrderSA:
		return kindSetAttribute
	case OrderEUA:
		return kindEraseUnprotected
	case OrderSFE, OrderMF:
		return kindUnsupported
	default:
		return kindText
	}
}

// DecodeScreen applies a host write record to a buffer and returns the result.
// Erase commands start from a blank buffer; a plain write starts from a copy of prev.
// prev is never modified.
func DecodeScreen(record []byte, prev *screen.Buffer) (*screen.Buffer, error) {
	op, body, err := Unframe(record)
	if err != nil {
		return nil, err
	}
	if op != OpHostWrite {
		return nil, &domain.DecodeError{Offset: 3, Reason: fmt.Sprintf("expected host write, got opcode %#02x", op)}
	}
	if len(body) == 0 {
		return nil, &domain.DecodeError{Offset: EnvelopeSize, Reason: "empty body"}
	}

	var buf *screen.Buffer
	switch body[0] {
	case CmdEraseWrite, CmdEraseWriteAlternate:
		buf = screen.NewBuffer()
	case CmdWrite:
		if prev != nil {
			buf = prev.Clone()
		} else {
			buf = screen.NewBuffer()
		}
	default:
		return nil, &domain.DecodeError{Offset: EnvelopeSize, Reason: fmt.Sprintf("unknown write command %#02x", body[0])}
	}

	i := 1
	if i < len(body) {
		i++ // write control character
	}

	need := func(n int) error {
		if i+n >= len(body) {
			return &domain.DecodeError{Offset: EnvelopeSize + i, Order: body[i], Reason: "truncated order"}
		}
		return nil
	}

	for i < len(body) {
		b := body[i]
		switch classify(b) {
		case kindText:
			buf.Put(ebcdic.DisplayRune(b))
			i++
		case kindStartField:
			if err := need(1); err != nil {
				return nil, err
			}
			buf.StartField(DecodeAttribute(body[i+1]))
			i += 2
		case kindSetAddress:
			if err := need(2); err != nil {
				return nil, err
			}
			addr := DecodeAddress(body[i+1], body[i+2])
			if addr >= domain.BufferSize {
				return nil, &domain.DecodeError{Offset: EnvelopeSize + i, Order: b, Reason: fmt.Sprintf("address %d outside buffer", addr)}
			}
			buf.SetWriteAddress(addr)
			i += 3
		case kindInsertCursor:
			buf.SetCursor(buf.WriteAddress())
			i++
		case kindRepeat:
			if err := need(3); err != nil {
				return nil, err
			}
			stop := DecodeAddress(body[i+1], body[i+2])
			if stop >= domain.BufferSize {
				return nil, &domain.DecodeError{Offset: EnvelopeSize + i, Order: b, Reason: fmt.Sprintf("address %d outside buffer", stop)}
			}
			r := ebcdic.DisplayRune(body[i+3])
			buf.Put(r)
			for buf.WriteAddress() != stop {
				buf.Put(r)
			}
			i += 4
		case kindSetAttribute, kindEraseUnprotected:
			if err := need(2); err != nil {
				return nil, err
			}
			i += 3
		case kindUnsupported:
			return nil, &domain.DecodeError{Offset: EnvelopeSize + i, Order: b, Reason: "unsupported order"}
		default:
			panic(fmt.Sprintf("datastream: unhandled order kind for %#02x", b))
		}
	}

	buf.ComputeFields()
	return buf, nil
}
