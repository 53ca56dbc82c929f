// Package datastream encodes and decodes the record payloads exchanged once a
// connection is negotiated: host screen writes and client input.
//
// A record is a fixed 10-byte envelope followed by a body. Record framing on the
// byte stream (terminator and byte transparency) belongs to package telnet.
package datastream

// Envelope layout.
const (
	EnvelopeSize = 10

	// OpHostWrite carries a screen from host to client.
	OpHostWrite byte = 0x01
	// OpClientInput carries an attention key and modified fields from client to host.
	OpClientInput byte = 0x02
)

// Write commands.
const (
	CmdWrite               byte = 0xF1
	CmdEraseWrite          byte = 0xF5
	CmdEraseWriteAlternate byte = 0x7E
)

// DefaultWCC is the write control character emitted by the host: reset and restore keyboard.
const DefaultWCC byte = 0xC3

// Orders.
const (
	OrderSF  byte = 0x1D // start field
	OrderSBA byte = 0x11 // set buffer address
	OrderIC  byte = 0x13 // insert cursor
	OrderRA  byte = 0x3C // repeat to address
	OrderSA  byte = 0x28 // set attribute
	OrderEUA byte = 0x12 // erase unprotected to address
	OrderSFE byte = 0x29 // start field extended
	OrderMF  byte = 0x2C // modify field
)

// addressCodes is the six-bit translation table shared by buffer addresses and field attributes.
var addressCodes = [64]byte{
	0x40, 0xC1, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6, 0xC7,
	0xC8, 0xC9, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F,
	0x50, 0xD1, 0xD2, 0xD3, 0xD4, 0xD5, 0xD6, 0xD7,
	0xD8, 0xD9, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F,
	0x60, 0x61, 0xE2, 0xE3, 0xE4, 0xE5, 0xE6, 0xE7,
	0xE8, 0xE9, 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F,
	0xF0, 0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7,
	0xF8, 0xF9, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F,
}

// EncodeAddress encodes a 0-based buffer address in 12-bit form.
func EncodeAddress(addr int) [2]byte {
	return [2]byte{addressCodes[(addr>>6)&0x3F], addressCodes[addr&0x3F]}
}

// DecodeAddress accepts both 12-bit and 14-bit encodings.
func DecodeAddress(hi, lo byte) int {
	if hi&0xC0 == 0 {
		return int(hi&0x3F)<<8 | int(lo)
	}
	return int(hi&0x3F)<<6 | int(lo&0x3F)
}

// EncodeAttribute maps attribute bits onto their graphic code.
func EncodeAttribute(attr byte) byte {
	return addressCodes[attr&0x3F]
}

// DecodeAttribute strips the graphic-code bits from an attribute byte.
func DecodeAttribute(b byte) byte {
	return b & 0x3F
}
