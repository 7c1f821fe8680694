package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/socket"
)

// GraphOverlay contains diagnostic data to highlight on the graph.
type GraphOverlay struct {
	// Orphans are nodes no edge leads to.
	Orphans []string
	// Selected is the node the author is currently editing.
	Selected string
}

// GenerateMermaid produces a Mermaid flowchart syntax string for a quiz graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Result: ([Stadium])
// - Composite with choices: {Rhombus}
// - Other composite: [Rectangle]
// Option edges are labelled with the option text and score. Edges whose
// socket no longer exists are drawn dotted and flagged.
func GenerateMermaid(g domain.QuizGraph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.Kind == domain.KindStart:
			opener, closer = "((", "))"
		case node.Kind == domain.KindResult:
			opener, closer = "([", "])"
		case node.HasChoices():
			opener, closer = "{", "}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escape(nodeLabel(node)), closer)
	}

	dangling := make(map[string]bool)
	for _, e := range socket.Dangling(g) {
		dangling[e.ID] = true
	}

	for _, e := range g.Edges {
		from, to := sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target)
		switch {
		case dangling[e.ID]:
			fmt.Fprintf(&sb, "    %s -. \"⚠ missing socket\" .-> %s\n", from, to)
		case e.FromDefaultSocket():
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
		default:
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(optionLabel(g, e)), to)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef orphan fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Orphans {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s orphan;\n", safeID)
			}
		}
		if overlay.Selected != "" {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

// Orphans lists non-start nodes no edge targets, for use in an overlay.
func Orphans(g domain.QuizGraph) []string {
	targeted := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		targeted[e.Target] = true
	}
	var out []string
	for _, n := range g.Nodes {
		if n.Kind != domain.KindStart && !targeted[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

func nodeLabel(n domain.Node) string {
	if n.Label != "" {
		return n.Label
	}
	for _, el := range n.Elements {
		if el.Question != "" {
			return el.Question
		}
	}
	if len(n.Elements) > 0 {
		return fmt.Sprintf("%s (%d elements)", n.ID, len(n.Elements))
	}
	return n.ID
}

func optionLabel(g domain.QuizGraph, e domain.Edge) string {
	elementID, index, ok := socket.Parse(e.SourceSocket)
	if !ok {
		return e.SourceSocket
	}
	el, ok := g.Element(e.Source, elementID)
	if !ok || index >= len(el.Options) {
		return e.SourceSocket
	}
	opt := el.Options[index]
	return fmt.Sprintf("%s (%+d)", opt.Label, opt.Score)
}

// escape replaces double quotes, which would end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
