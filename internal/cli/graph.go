package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/greenscreen/internal/presentation/graph"
	"github.com/aretw0/greenscreen/pkg/catalog"
)

// Graph writes the navigation rules as a Mermaid flowchart.
func Graph(w io.Writer, catalogPath, navigationPath string) error {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	nav, err := catalog.LoadNavigation(navigationPath, cat)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, graph.GenerateMermaid(cat, nav, nil))
	return err
}
