package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromLog marks every logged node as visited and the last one as current.
func OverlayFromLog(log []domain.LogEntry) *GraphOverlay {
	overlay := &GraphOverlay{}
	for _, entry := range log {
		overlay.VisitedNodes = append(overlay.VisitedNodes, entry.Node)
	}
	if len(log) > 0 {
		overlay.CurrentNode = log[len(log)-1].Node
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of g.
// It applies semantic styling:
// - Start: ((Circle))
// - Conditional: {Rhombus}
// - Terminal (no successor): ([Stadium])
// - Default: [Rectangle]
// Conditional edges are labelled with the comparison on the true branch and
// "else" on the false branch. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range g.NodeNames() {
		safeID := sanitizeMermaidID(name)
		edge, hasEdge := g.Edges[name]

		opener, closer := "[", "]"
		switch {
		case name == g.StartNode:
			opener, closer = "((", "))"
		case hasEdge && edge.IsConditional():
			opener, closer = "{", "}"
		case !hasEdge || len(edge.Successors()) == 0:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, name, closer)
	}

	for _, from := range g.Sources() {
		edge := g.Edges[from]
		safeFrom := sanitizeMermaidID(from)

		if !edge.IsConditional() {
			if edge.Next != "" {
				fmt.Fprintf(&sb, "    %s --> %s\n", safeFrom, sanitizeMermaidID(edge.Next))
			}
			continue
		}

		if edge.IfTrue != "" {
			cond := fmt.Sprintf("%s %s %v", edge.ConditionKey, edge.ConditionOp, edge.ConditionValue)
			// Escape double quotes in condition for Mermaid label
			cond = strings.ReplaceAll(cond, "\"", "'")
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeFrom, cond, sanitizeMermaidID(edge.IfTrue))
		}
		if edge.IfFalse != "" {
			fmt.Fprintf(&sb, "    %s -. \"else\" .-> %s\n", safeFrom, sanitizeMermaidID(edge.IfFalse))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
