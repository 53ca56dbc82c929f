package client

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/greenscreen/pkg/domain"
)

var (
	ErrValueTooLarge = errors.New("value exceeds screen size")
	ErrInvalidUTF8   = errors.New("value contains invalid UTF-8 sequences")
)

// SanitizeValue prepares a field value for the wire: it rejects values larger
// than the screen or with invalid UTF-8 and strips control characters.
func SanitizeValue(value string) (string, error) {
	if len(value) > domain.BufferSize*utf8.UTFMax {
		return "", fmt.Errorf("%w: size=%d", ErrValueTooLarge, len(value))
	}
	if !utf8.ValidString(value) {
		return "", ErrInvalidUTF8
	}

	clean := true
	for _, r := range value {
		if unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return value, nil
	}

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
