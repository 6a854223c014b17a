// Package knowledge derives a concept dependency graph from card tags. Each
// distinct tag becomes a concept node; prerequisite edges come from the
// explicit tag hierarchy and, more weakly, from tag co-occurrence. Mastery,
// gaps and learning paths are pure functions of the deck snapshot and are
// recomputed on every build, never carried as mutable state.
package knowledge

import (
	"context"
	"fmt"
	"sort"

	"mnemo/internal/models"
)

const (
	// explicitEdgeWeight is the weight of a hierarchy-derived edge.
	// Heuristic co-occurrence edges are always weighted below it.
	explicitEdgeWeight = 1.0

	// maxHeuristicWeight caps co-occurrence edge weights.
	maxHeuristicWeight = 0.5

	// minCooccurrence is how many cards must share a tag pair before a
	// heuristic edge is considered.
	minCooccurrence = 2

	// masteryMargin is how much better mastered the prerequisite side of a
	// heuristic edge must be.
	masteryMargin = 0.1
)

// Node is a concept derived from a tag. Mastery is the average rolling
// accuracy of the directly tagged cards.
type Node struct {
	ID          string  `json:"id"`
	Mastery     float64 `json:"mastery"`      // [0,1]
	GapSeverity float64 `json:"gap_severity"` // [0,1], 0 when not a gap
	CardCount   int     `json:"card_count"`
	Studied     bool    `json:"studied"` // at least one tagged card has reviews
}

// Edge is a directed prerequisite relation: From should be learned before
// To. Explicit edges come from the tag hierarchy; the rest are heuristic.
type Edge struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Weight   float64 `json:"weight"`
	Explicit bool    `json:"explicit"`
}

// DiagnosticKind tags a build diagnostic.
type DiagnosticKind int

// GraphCycleDetected reports a cycle that was broken during construction.
// It is informational: the build proceeds after deterministic edge removal.
const GraphCycleDetected DiagnosticKind = iota + 1

// String returns the diagnostic kind name.
func (k DiagnosticKind) String() string {
	if k == GraphCycleDetected {
		return "GraphCycleDetected"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic records a non-fatal observation made while building the graph.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Detail string         `json:"detail"`
}

// Graph is an immutable snapshot of the concept dependency structure.
// Generation distinguishes successive rebuilds of the same deck.
type Graph struct {
	Nodes       map[string]*Node `json:"nodes"`
	Edges       []Edge           `json:"edges"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
	Generation  uint64           `json:"generation"`
}

// Build constructs the concept graph for a deck. The hierarchy maps a tag to
// its parent tag; parent/child relations always yield parent-to-child edges,
// while co-occurrence relations are heuristic and weighted lower. Cycles are
// broken deterministically and recorded as diagnostics, never fatal. The
// context is checked between node visits so very large builds can be
// cancelled; a cancelled build returns an error and no partial graph.
func Build(ctx context.Context, deck *models.Deck, hierarchy map[string]string) (*Graph, error) {
	g := &Graph{Nodes: make(map[string]*Node)}

	// Nodes and mastery, a pure aggregation over the tagged cards.
	for _, tag := range deck.Tags() {
		g.Nodes[tag] = &Node{ID: tag}
	}
	for _, c := range deck.Cards {
		for _, tag := range c.Tags {
			n := g.Nodes[tag]
			n.CardCount++
			n.Mastery += c.Accuracy()
			if c.Outcomes.Len() > 0 {
				n.Studied = true
			}
		}
	}
	for _, n := range g.Nodes {
		if n.CardCount > 0 {
			n.Mastery /= float64(n.CardCount)
		}
	}

	// Explicit edges from the tag hierarchy.
	for _, child := range sortedKeys(hierarchy) {
		parent := hierarchy[child]
		if _, ok := g.Nodes[parent]; !ok {
			continue
		}
		if _, ok := g.Nodes[child]; !ok {
			continue
		}
		g.Edges = append(g.Edges, Edge{From: parent, To: child, Weight: explicitEdgeWeight, Explicit: true})
	}

	g.addHeuristicEdges(deck, hierarchy)

	if err := g.breakCycles(ctx); err != nil {
		return nil, err
	}
	g.detectGaps()

	sortEdges(g.Edges)
	return g, nil
}

// addHeuristicEdges infers prerequisite edges from tag co-occurrence: when
// cards tagged B frequently co-occur with cards tagged A, within the same
// hierarchical branch, and A is clearly better mastered, A is likely a
// prerequisite of B.
func (g *Graph) addHeuristicEdges(deck *models.Deck, hierarchy map[string]string) {
	counts := make(map[[2]string]int)
	maxCount := 0
	for _, c := range deck.Cards {
		tags := append([]string(nil), c.Tags...)
		sort.Strings(tags)
		for i := 0; i < len(tags); i++ {
			for j := i + 1; j < len(tags); j++ {
				key := [2]string{tags[i], tags[j]}
				counts[key]++
				if counts[key] > maxCount {
					maxCount = counts[key]
				}
			}
		}
	}

	explicit := make(map[[2]string]bool)
	for _, e := range g.Edges {
		explicit[[2]string{e.From, e.To}] = true
		explicit[[2]string{e.To, e.From}] = true
	}

	for _, key := range sortedPairs(counts) {
		count := counts[key]
		if count < minCooccurrence || explicit[key] {
			continue
		}
		a, b := g.Nodes[key[0]], g.Nodes[key[1]]
		if !sameBranch(key[0], key[1], hierarchy) {
			continue
		}
		weight := maxHeuristicWeight * float64(count) / float64(maxCount)
		switch {
		case a.Mastery >= b.Mastery+masteryMargin:
			g.Edges = append(g.Edges, Edge{From: a.ID, To: b.ID, Weight: weight})
		case b.Mastery >= a.Mastery+masteryMargin:
			g.Edges = append(g.Edges, Edge{From: b.ID, To: a.ID, Weight: weight})
		}
	}
}

// sameBranch reports whether two tags share a root in the hierarchy. Tags
// outside the hierarchy belong to one implicit flat branch.
func sameBranch(a, b string, hierarchy map[string]string) bool {
	ra, inA := root(a, hierarchy)
	rb, inB := root(b, hierarchy)
	if inA != inB {
		return false
	}
	if !inA {
		return true
	}
	return ra == rb
}

func root(tag string, hierarchy map[string]string) (string, bool) {
	if _, ok := hierarchy[tag]; !ok {
		// A tag can be a branch root without having a parent entry.
		for _, parent := range hierarchy {
			if parent == tag {
				return tag, true
			}
		}
		return tag, false
	}
	cur := tag
	for i := 0; i < len(hierarchy)+1; i++ {
		parent, ok := hierarchy[cur]
		if !ok {
			return cur, true
		}
		cur = parent
	}
	return cur, true // hierarchy itself is cyclic; breakCycles handles edges
}

// breakCycles removes edges until the graph is acyclic. Each removal picks,
// within the detected cycle, a heuristic edge over an explicit one, then the
// lowest weight, then lexicographic (from, to) order, and records a
// GraphCycleDetected diagnostic. It never fails on cyclic input.
func (g *Graph) breakCycles(ctx context.Context) error {
	for {
		cycle, err := g.findCycle(ctx)
		if err != nil {
			return err
		}
		if len(cycle) == 0 {
			return nil
		}

		victim := -1
		for i, idx := range cycle {
			if victim == -1 {
				victim = i
				continue
			}
			if betterVictim(g.Edges[idx], g.Edges[cycle[victim]]) {
				victim = i
			}
		}
		removed := g.Edges[cycle[victim]]
		g.Edges = append(g.Edges[:cycle[victim]], g.Edges[cycle[victim]+1:]...)
		g.Diagnostics = append(g.Diagnostics, Diagnostic{
			Kind:   GraphCycleDetected,
			Detail: fmt.Sprintf("removed edge %s -> %s (weight %.3f) to break cycle", removed.From, removed.To, removed.Weight),
		})
	}
}

// betterVictim reports whether edge a should be removed in preference to b.
func betterVictim(a, b Edge) bool {
	if a.Explicit != b.Explicit {
		return !a.Explicit
	}
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.From != b.From {
		return a.From < b.From
	}
	return a.To < b.To
}

// findCycle returns the indices into g.Edges of the edges forming one cycle,
// or nil when the graph is acyclic. Traversal order is deterministic.
func (g *Graph) findCycle(ctx context.Context) ([]int, error) {
	adj := make(map[string][]int) // node -> outgoing edge indices
	for i, e := range g.Edges {
		adj[e.From] = append(adj[e.From], i)
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int)
	var stack []int // edge indices on the current DFS path

	var visit func(node string) []int
	visit = func(node string) []int {
		state[node] = inStack
		for _, idx := range adj[node] {
			next := g.Edges[idx].To
			switch state[next] {
			case inStack:
				// Collect the cycle edges from the stack.
				cycle := []int{idx}
				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append(cycle, stack[i])
					if g.Edges[stack[i]].From == next {
						break
					}
				}
				return cycle
			case unvisited:
				stack = append(stack, idx)
				if cycle := visit(next); cycle != nil {
					return cycle
				}
				stack = stack[:len(stack)-1]
			}
		}
		state[node] = done
		return nil
	}

	for _, node := range sortedNodeIDs(g.Nodes) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if state[node] == unvisited {
			if cycle := visit(node); cycle != nil {
				return cycle, nil
			}
		}
	}
	return nil, nil
}

// Prerequisites returns the IDs of the direct prerequisite nodes of the
// given concept, sorted.
func (g *Graph) Prerequisites(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	sort.Strings(out)
	return out
}

func sortedNodeIDs(nodes map[string]*Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPairs(m map[[2]string]int) [][2]string {
	keys := make([][2]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
}
