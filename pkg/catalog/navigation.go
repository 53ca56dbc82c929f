package catalog

import (
	"os"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// LoadNavigation reads a navigation file and validates it against the catalog.
func LoadNavigation(path string, cat *domain.Catalog) (*domain.NavigationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(path, err)
	}
	return ParseNavigation(data, path, cat)
}

// ParseNavigation decodes and validates a navigation source.
func ParseNavigation(data []byte, source string, cat *domain.Catalog) (*domain.NavigationConfig, error) {
	docs, err := documents(data)
	if err != nil {
		return nil, configError(source, err)
	}
	if len(docs) != 1 {
		return nil, &domain.ConfigError{Source: source, Problems: []string{"expected exactly one navigation document"}}
	}
	var nav domain.NavigationConfig
	if err := decodeInto(docs[0], &nav); err != nil {
		return nil, configError(source, err)
	}
	if err := nav.Validate(cat); err != nil {
		return nil, err
	}
	return &nav, nil
}
