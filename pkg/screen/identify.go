package screen

import (
	"strings"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// Identify returns the first catalog screen whose identifier text appears at its position.
// Comparison ignores case and trailing blanks.
func Identify(c *domain.Catalog, b *Buffer) (*domain.ScreenDefinition, bool) {
	for _, s := range c.Screens() {
		if Is(b, s) {
			return s, true
		}
	}
	return nil, false
}

// Is reports whether the buffer shows the given screen.
func Is(b *Buffer, s *domain.ScreenDefinition) bool {
	id := s.Identifier
	want := strings.TrimRight(id.Text, " ")
	if want == "" {
		return false
	}
	got := strings.TrimRight(b.Read(id.Row, id.Col, len([]rune(want))), " ")
	return strings.EqualFold(got, want)
}
