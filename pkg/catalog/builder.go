package catalog

import "github.com/aretw0/greenscreen/pkg/domain"

// Builder assembles a catalog in code.
type Builder struct {
	screens []*ScreenBuilder
}

// NewBuilder creates an empty catalog builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Screen starts a new screen. If the screen already exists, its builder is returned.
func (b *Builder) Screen(id string) *ScreenBuilder {
	for _, sb := range b.screens {
		if sb.def.ID == id {
			return sb
		}
	}
	sb := &ScreenBuilder{def: domain.ScreenDefinition{ID: id}, builder: b}
	b.screens = append(b.screens, sb)
	return sb
}

// Build validates and returns the catalog.
func (b *Builder) Build() (*domain.Catalog, error) {
	defs := make([]domain.ScreenDefinition, 0, len(b.screens))
	for _, sb := range b.screens {
		defs = append(defs, sb.def)
	}
	return domain.NewCatalog(defs...)
}

// ScreenBuilder configures one screen.
type ScreenBuilder struct {
	def     domain.ScreenDefinition
	builder *Builder
}

// Identifier sets the identifying text. Screen writes always paint it.
func (sb *ScreenBuilder) Identifier(row, col int, text string) *ScreenBuilder {
	sb.def.Identifier = domain.Identifier{Row: row, Col: col, Text: text}
	return sb
}

// Text paints protected literal text.
func (sb *ScreenBuilder) Text(row, col int, text string) *ScreenBuilder {
	sb.def.Text = append(sb.def.Text, domain.StaticText{Row: row, Col: col, Text: text})
	return sb
}

// Input adds an input field.
func (sb *ScreenBuilder) Input(name string, row, col, length int, attrs ...string) *ScreenBuilder {
	return sb.field(domain.FieldInput, name, row, col, length, attrs)
}

// Display adds a display field.
func (sb *ScreenBuilder) Display(name string, row, col, length int, attrs ...string) *ScreenBuilder {
	return sb.field(domain.FieldDisplay, name, row, col, length, attrs)
}

func (sb *ScreenBuilder) field(kind domain.FieldKind, name string, row, col, length int, attrs []string) *ScreenBuilder {
	sb.def.Fields = append(sb.def.Fields, domain.FieldDefinition{
		Name: name, Kind: kind, Row: row, Col: col, Length: length, Attributes: attrs,
	})
	return sb
}

// Screen switches to another screen of the same catalog.
func (sb *ScreenBuilder) Screen(id string) *ScreenBuilder {
	return sb.builder.Screen(id)
}

// Build builds the whole catalog.
func (sb *ScreenBuilder) Build() (*domain.Catalog, error) {
	return sb.builder.Build()
}
