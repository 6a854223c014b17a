package knowledge

import "sort"

// Gap detection. A concept is a knowledge gap when the learner is already
// studying its cards while at least one prerequisite concept sits below the
// mastery threshold: effort is being spent downstream of a weak foundation.

const (
	// GapThreshold is the prerequisite mastery below which a studied
	// dependent concept is flagged.
	GapThreshold = 0.5

	// Severity blends how far below threshold the worst prerequisite sits
	// with how many downstream concepts the gap impedes.
	shortfallWeight  = 0.6
	downstreamWeight = 0.4
	downstreamCap    = 5
)

// detectGaps scores GapSeverity for every node. Severity stays in [0,1] and
// is 0 for nodes that are not gaps.
func (g *Graph) detectGaps() {
	for _, id := range sortedNodeIDs(g.Nodes) {
		node := g.Nodes[id]
		node.GapSeverity = 0
		if !node.Studied {
			continue
		}

		worst := 1.0
		for _, prereq := range g.Prerequisites(id) {
			if m := g.Nodes[prereq].Mastery; m < worst {
				worst = m
			}
		}
		if worst >= GapThreshold {
			continue
		}

		shortfall := (GapThreshold - worst) / GapThreshold
		downstream := float64(g.downstreamCount(id))
		if downstream > downstreamCap {
			downstream = downstreamCap
		}
		severity := shortfallWeight*shortfall + downstreamWeight*downstream/downstreamCap
		if severity > 1 {
			severity = 1
		}
		node.GapSeverity = severity
	}
}

// Gaps returns the IDs of all flagged nodes, most severe first.
func (g *Graph) Gaps() []string {
	var out []string
	for _, id := range sortedNodeIDs(g.Nodes) {
		if g.Nodes[id].GapSeverity > 0 {
			out = append(out, id)
		}
	}
	// Severity descending; the pre-sorted IDs keep ties deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		return g.Nodes[out[i]].GapSeverity > g.Nodes[out[j]].GapSeverity
	})
	return out
}

// downstreamCount returns how many distinct concepts are reachable from the
// given node by following prerequisite edges forward.
func (g *Graph) downstreamCount(id string) int {
	adj := make(map[string][]string)
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(node string) {
		for _, next := range adj[node] {
			if !seen[next] {
				seen[next] = true
				walk(next)
			}
		}
	}
	walk(id)
	return len(seen)
}
