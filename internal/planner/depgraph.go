package planner

import (
	"github.com/dominikbraun/graph"

	"visaexpert/internal/rule"
)

// DependencyGraph is the directed condition→action graph: one edge per
// (condition, rule) pair, condition -> rule.Action, for every rule that
// mentions condition. Ancestor resolution walks it forward from a
// candidate question towards goals; internal/validator walks the same
// structure looking for strongly connected components (cycles).
//
// planner.New builds one for each Planner it creates, and Validate builds
// its own; a graph is read-only once built.
type DependencyGraph struct {
	g        graph.Graph[string, string]
	adjacent map[string]map[string]graph.Edge[string]
}

func identity(s string) string { return s }

// BuildDependencyGraph constructs the condition→action dependency graph
// for cat. Every condition and action string becomes a vertex (duplicate
// AddVertex calls for the same string are tolerated and ignored); every
// rule contributes one edge per condition it reads.
func BuildDependencyGraph(cat *rule.Catalogue) *DependencyGraph {
	g := graph.New(identity, graph.Directed())

	ensureVertex := func(name string) {
		_ = g.AddVertex(name) // ErrVertexAlreadyExists is expected and ignored
	}

	for _, r := range cat.Rules {
		ensureVertex(r.Action)
		for _, cond := range r.Conditions {
			ensureVertex(cond)
			_ = g.AddEdge(cond, r.Action) // ErrEdgeAlreadyExists tolerated
		}
	}

	adjacent, err := g.AdjacencyMap()
	if err != nil {
		adjacent = make(map[string]map[string]graph.Edge[string])
	}

	return &DependencyGraph{g: g, adjacent: adjacent}
}

// Successors returns the actions directly produced from condition — i.e.
// the set of rule actions that read condition as one of their conditions.
func (d *DependencyGraph) Successors(condition string) []string {
	edges, ok := d.adjacent[condition]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(edges))
	for target := range edges {
		out = append(out, target)
	}
	return out
}

// StronglyConnectedComponents exposes the underlying graph's SCCs for
// internal/validator's cycle report.
func (d *DependencyGraph) StronglyConnectedComponents() ([][]string, error) {
	return graph.StronglyConnectedComponents(d.g)
}
