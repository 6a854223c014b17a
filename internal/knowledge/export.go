package knowledge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Two export encodings are derived from the same in-memory graph: a
// structured JSON encoding for programmatic consumers, which round-trips
// through Import with no loss of nodes or edges, and a Graphviz DOT encoding
// for human inspection.

// NodeExport is the structured encoding of a concept node.
type NodeExport struct {
	ID          string  `json:"id"`
	Mastery     float64 `json:"mastery"`
	GapSeverity float64 `json:"gap_severity"`
}

// EdgeExport is the structured encoding of a prerequisite edge.
type EdgeExport struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// PathExport is the structured encoding of one learning-path phase.
type PathExport struct {
	Phase         string   `json:"phase"`
	Concepts      []string `json:"concepts"`
	EstimatedDays float64  `json:"estimated_days"`
}

// Export is the serializable form of a graph snapshot.
type Export struct {
	Nodes         []NodeExport `json:"nodes"`
	Edges         []EdgeExport `json:"edges"`
	LearningPaths []PathExport `json:"learning_paths"`
}

// Export produces the structured encoding. Nodes and edges are emitted in
// deterministic order so equal graphs encode identically.
func (g *Graph) Export() Export {
	out := Export{}
	for _, id := range sortedNodeIDs(g.Nodes) {
		n := g.Nodes[id]
		out.Nodes = append(out.Nodes, NodeExport{ID: n.ID, Mastery: n.Mastery, GapSeverity: n.GapSeverity})
	}
	edges := append([]Edge(nil), g.Edges...)
	sortEdges(edges)
	for _, e := range edges {
		out.Edges = append(out.Edges, EdgeExport{From: e.From, To: e.To, Weight: e.Weight})
	}
	for _, seg := range g.LearningPath() {
		out.LearningPaths = append(out.LearningPaths, PathExport{
			Phase:         seg.Phase.String(),
			Concepts:      seg.Concepts,
			EstimatedDays: seg.EstimatedDays,
		})
	}
	return out
}

// MarshalJSON encodes the export form of the graph.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Export())
}

// Import reconstructs a graph from the structured encoding. The node and
// edge sets are restored exactly; learning paths are derived data and are
// recomputed from the restored structure on demand.
func Import(data []byte) (*Graph, error) {
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("mnemo: decode graph export: %w", err)
	}
	g := &Graph{Nodes: make(map[string]*Node, len(exp.Nodes))}
	for _, n := range exp.Nodes {
		g.Nodes[n.ID] = &Node{ID: n.ID, Mastery: n.Mastery, GapSeverity: n.GapSeverity}
	}
	for _, e := range exp.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return nil, fmt.Errorf("mnemo: graph export references unknown node %q", e.From)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return nil, fmt.Errorf("mnemo: graph export references unknown node %q", e.To)
		}
		g.Edges = append(g.Edges, Edge{From: e.From, To: e.To, Weight: e.Weight})
	}
	sortEdges(g.Edges)
	return g, nil
}

// DOT renders the graph in Graphviz format. Gap nodes are highlighted and
// edge thickness follows weight, so the picture matches the structured
// encoding it is derived from.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph knowledge {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n")

	for _, id := range sortedNodeIDs(g.Nodes) {
		n := g.Nodes[id]
		attrs := fmt.Sprintf("label=%q", fmt.Sprintf("%s\nmastery %.2f", n.ID, n.Mastery))
		if n.GapSeverity > 0 {
			attrs += fmt.Sprintf(", color=red, penwidth=2, tooltip=%q", fmt.Sprintf("gap severity %.2f", n.GapSeverity))
		}
		fmt.Fprintf(&b, "  %q [%s];\n", n.ID, attrs)
	}

	edges := append([]Edge(nil), g.Edges...)
	sortEdges(edges)
	for _, e := range edges {
		style := "dashed"
		if e.Explicit {
			style = "solid"
		}
		fmt.Fprintf(&b, "  %q -> %q [style=%s, penwidth=%.1f];\n", e.From, e.To, style, 0.5+2*e.Weight)
	}

	b.WriteString("}\n")
	return b.String()
}
