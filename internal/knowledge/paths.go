package knowledge

import (
	"fmt"
	"sort"
)

// Learning-path generation: a topological ordering of the not-yet-mastered
// concepts, grouped into phases by depth in the dependency graph, with a
// duration estimate per phase from card counts and typical review cadence.

const (
	// PathMasteryThreshold excludes concepts the learner already knows
	// from generated paths.
	PathMasteryThreshold = 0.8

	// Duration estimate: each card typically needs a few review passes,
	// at a sustainable daily review load.
	reviewsPerCard = 3.0
	reviewsPerDay  = 20.0
)

// Phase groups path segments by their depth in the dependency graph.
type Phase int

const (
	PhaseFoundation Phase = iota + 1
	PhaseCore
	PhaseAdvanced
)

var phaseNames = [...]string{
	PhaseFoundation: "foundation",
	PhaseCore:       "core",
	PhaseAdvanced:   "advanced",
}

// String returns "foundation", "core" or "advanced".
func (p Phase) String() string {
	if p >= PhaseFoundation && p <= PhaseAdvanced {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase converts a phase name back to a Phase.
func ParsePhase(name string) (Phase, error) {
	for p := PhaseFoundation; p <= PhaseAdvanced; p++ {
		if phaseNames[p] == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("mnemo: unknown phase %q", name)
}

// PathSegment is one phase of a learning path: concepts in recommended study
// order plus an estimated duration for the phase.
type PathSegment struct {
	Phase         Phase    `json:"phase"`
	Concepts      []string `json:"concepts"`
	EstimatedDays float64  `json:"estimated_days"`
}

// LearningPath orders the concepts still below the mastery threshold so that
// every prerequisite precedes its dependents, grouped into phases by depth.
// The ordering is deterministic: ties resolve lexicographically.
func (g *Graph) LearningPath() []PathSegment {
	include := make(map[string]bool)
	for id, n := range g.Nodes {
		if n.Mastery < PathMasteryThreshold {
			include[id] = true
		}
	}
	if len(include) == 0 {
		return nil
	}

	// Kahn's algorithm over the included subgraph, lexicographic ready set.
	indegree := make(map[string]int)
	adj := make(map[string][]string)
	for id := range include {
		indegree[id] = 0
	}
	for _, e := range g.Edges {
		if include[e.From] && include[e.To] {
			adj[e.From] = append(adj[e.From], e.To)
			indegree[e.To]++
		}
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	depth := make(map[string]int)
	var order []string
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		inserted := false
		for _, next := range adj[id] {
			if d := depth[id] + 1; d > depth[next] {
				depth[next] = d
			}
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
				inserted = true
			}
		}
		if inserted {
			sort.Strings(ready)
		}
	}

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	segments := map[Phase]*PathSegment{}
	for _, id := range order {
		p := phaseForDepth(depth[id], maxDepth)
		seg, ok := segments[p]
		if !ok {
			seg = &PathSegment{Phase: p}
			segments[p] = seg
		}
		seg.Concepts = append(seg.Concepts, id)
		seg.EstimatedDays += float64(g.Nodes[id].CardCount) * reviewsPerCard / reviewsPerDay
	}

	var out []PathSegment
	for p := PhaseFoundation; p <= PhaseAdvanced; p++ {
		if seg, ok := segments[p]; ok {
			out = append(out, *seg)
		}
	}
	return out
}

// phaseForDepth splits the depth range into three bands.
func phaseForDepth(depth, maxDepth int) Phase {
	if maxDepth == 0 {
		return PhaseFoundation
	}
	switch {
	case depth*3 <= maxDepth:
		return PhaseFoundation
	case depth*3 <= 2*maxDepth:
		return PhaseCore
	default:
		return PhaseAdvanced
	}
}
