package telnet

import (
	"fmt"
	"io"
)

type tokenKind int

const (
	tokData tokenKind = iota
	tokEOR
	tokOption
	tokSub
	tokOther
)

type token struct {
	kind    tokenKind
	data    byte
	cmd     byte
	opt     byte
	payload []byte
}

// byteReader is the subset of bufio.Reader the scanner needs.
type byteReader interface {
	ReadByte() (byte, error)
}

// nextToken reads one data byte or one complete command from the stream.
func nextToken(r byteReader) (token, error) {
	b, err := r.ReadByte()
	if err != nil {
		return token{}, err
	}
	if b != CmdIAC {
		return token{kind: tokData, data: b}, nil
	}

	cmd, err := r.ReadByte()
	if err != nil {
		return token{}, unexpected(err)
	}
	switch cmd {
	case CmdIAC:
		return token{kind: tokData, data: CmdIAC}, nil
	case CmdEOR:
		return token{kind: tokEOR}, nil
	case CmdDO, CmdDONT, CmdWILL, CmdWONT:
		opt, err := r.ReadByte()
		if err != nil {
			return token{}, unexpected(err)
		}
		return token{kind: tokOption, cmd: cmd, opt: opt}, nil
	case CmdSB:
		return readSub(r)
	default:
		return token{kind: tokOther, cmd: cmd}, nil
	}
}

// maxSubnegotiation bounds a single subnegotiation payload.
const maxSubnegotiation = 1024

func readSub(r byteReader) (token, error) {
	opt, err := r.ReadByte()
	if err != nil {
		return token{}, unexpected(err)
	}
	var payload []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return token{}, unexpected(err)
		}
		if b == CmdIAC {
			next, err := r.ReadByte()
			if err != nil {
				return token{}, unexpected(err)
			}
			if next == CmdSE {
				return token{kind: tokSub, opt: opt, payload: payload}, nil
			}
			b = next
		}
		if len(payload) >= maxSubnegotiation {
			return token{}, fmt.Errorf("subnegotiation for %s exceeds %d bytes", OptionName(opt), maxSubnegotiation)
		}
		payload = append(payload, b)
	}
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
