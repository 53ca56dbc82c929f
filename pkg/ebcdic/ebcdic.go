// Package ebcdic converts between host EBCDIC bytes (code page 037) and text.
//
// Both directions are served from fixed 256-entry tables built once at start-up,
// so conversions never fail: every byte has a rune and every Latin-1 rune has a byte.
// Runes outside Latin-1 encode as '?'.
package ebcdic

import "golang.org/x/text/encoding/charmap"

// Space is the EBCDIC blank.
const Space byte = 0x40

var (
	toHost   [256]byte
	fromHost [256]rune
	question byte
)

func init() {
	cp := charmap.CodePage037
	question, _ = cp.EncodeRune('?')
	for i := 0; i < 256; i++ {
		fromHost[i] = cp.DecodeByte(byte(i))
	}
	for i := 0; i < 256; i++ {
		b, ok := cp.EncodeRune(rune(i))
		if !ok {
			b = question
		}
		toHost[i] = b
	}
}

// EncodeRune maps a single rune to its EBCDIC byte.
func EncodeRune(r rune) byte {
	if r < 0 || r > 0xFF {
		return question
	}
	return toHost[r]
}

// DecodeByte maps a single EBCDIC byte to its rune.
func DecodeByte(b byte) rune {
	return fromHost[b]
}

// DisplayRune is DecodeByte with control characters (including NUL) shown as blanks.
func DisplayRune(b byte) rune {
	r := fromHost[b]
	if r < 0x20 || (r >= 0x7F && r < 0xA0) {
		return ' '
	}
	return r
}

// Encode converts text to EBCDIC.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, EncodeRune(r))
	}
	return out
}

// Decode converts EBCDIC bytes to text.
func Decode(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = fromHost[c]
	}
	return string(runes)
}
