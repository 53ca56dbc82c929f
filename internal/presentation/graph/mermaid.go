package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// Overlay highlights live session data on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid renders the navigation rules as a Mermaid flowchart.
// Shapes:
// - Initial screen: ((Circle))
// - Screen with input fields: [/Parallelogram/]
// - Display-only screen: [Rectangle]
// Guard rules appear as dotted self loops labelled with their error text.
func GenerateMermaid(cat *domain.Catalog, nav *domain.NavigationConfig, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range cat.Screens() {
		safeID := sanitizeMermaidID(s.ID)
		opener, closer := "[", "]"
		_, hasInput := s.FirstInput()
		switch {
		case s.ID == nav.InitialScreen:
			opener, closer = "((", "))"
		case hasInput:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, s.ID, closer)
	}

	for _, r := range nav.Rules {
		from := sanitizeMermaidID(r.From)
		label := strings.ToUpper(r.Key)
		if r.Validation != "" {
			label += " ✓ " + r.Validation
		}
		if r.IsGuard() {
			fmt.Fprintf(&sb, "    %s -. \"%s: %s\" .-> %s\n", from, label, escape(r.Error), from)
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(label), sanitizeMermaidID(r.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
