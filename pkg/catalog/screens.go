package catalog

import (
	"fmt"
	"os"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// LoadCatalog reads a catalog file or directory and validates it.
func LoadCatalog(path string) (*domain.Catalog, error) {
	files, err := sourceFiles(path)
	if err != nil {
		return nil, configError("catalog", err)
	}
	var screens []domain.ScreenDefinition
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, configError(f, err)
		}
		parsed, err := ParseScreens(data, f)
		if err != nil {
			return nil, err
		}
		screens = append(screens, parsed...)
	}
	return domain.NewCatalog(screens...)
}

// ParseCatalog parses and validates a single catalog source.
func ParseCatalog(data []byte, source string) (*domain.Catalog, error) {
	screens, err := ParseScreens(data, source)
	if err != nil {
		return nil, err
	}
	return domain.NewCatalog(screens...)
}

// ParseScreens decodes screen definitions without cross-screen validation.
func ParseScreens(data []byte, source string) ([]domain.ScreenDefinition, error) {
	docs, err := documents(data)
	if err != nil {
		return nil, configError(source, err)
	}
	var screens []domain.ScreenDefinition
	var problems []string
	for i, doc := range docs {
		items, ok := doc.([]any)
		if !ok {
			items = []any{doc}
		}
		for j, item := range items {
			var s domain.ScreenDefinition
			if err := decodeInto(item, &s); err != nil {
				problems = append(problems, fmt.Sprintf("document %d, screen %d: %v", i+1, j+1, err))
				continue
			}
			screens = append(screens, s)
		}
	}
	if len(problems) > 0 {
		return nil, &domain.ConfigError{Source: source, Problems: problems}
	}
	return screens, nil
}
