package datastream

import (
	"encoding/binary"
	"fmt"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// Frame prefixes a body with the record envelope.
// The length field counts the envelope and the unescaped body.
func Frame(op byte, body []byte) []byte {
	rec := make([]byte, EnvelopeSize, EnvelopeSize+len(body))
	binary.BigEndian.PutUint16(rec[0:2], uint16(EnvelopeSize+len(body)))
	rec[3] = op
	return append(rec, body...)
}

// Unframe checks the envelope and returns the opcode and body.
func Unframe(record []byte) (byte, []byte, error) {
	if len(record) < EnvelopeSize {
		return 0, nil, &domain.DecodeError{Offset: len(record), Reason: fmt.Sprintf("record of %d bytes is shorter than the envelope", len(record))}
	}
	if declared := int(binary.BigEndian.Uint16(record[0:2])); declared != len(record) {
		return 0, nil, &domain.DecodeError{Offset: 0, Reason: fmt.Sprintf("envelope declares %d bytes, record has %d", declared, len(record))}
	}
	if record[2] != 0 {
		return 0, nil, &domain.DecodeError{Offset: 2, Reason: fmt.Sprintf("unsupported data type %#02x", record[2])}
	}
	return record[3], record[EnvelopeSize:], nil
}
