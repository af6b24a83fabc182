package analyzer

import (
	"sort"
	"strings"

	"github.com/ludo-technologies/conscan/internal/parser"
)

// CallGraph is an adjacency map over locally-defined functions. Only
// calls that resolve to a function defined in the same source unit are
// recorded; external calls cannot participate in local recursion.
type CallGraph struct {
	// Nodes maps function name to its definition node
	Nodes map[string]*parser.Node

	// Edges maps caller name to the set of local callees
	Edges map[string]map[string]bool
}

// BuildCallGraph collects local function definitions and the call edges
// between them.
func BuildCallGraph(tree *parser.Node) *CallGraph {
	g := &CallGraph{
		Nodes: make(map[string]*parser.Node),
		Edges: make(map[string]map[string]bool),
	}

	tree.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeFunctionDef && n.Name != "" {
			g.Nodes[n.Name] = n
			g.Edges[n.Name] = make(map[string]bool)
		}
		return true
	})

	for name, fn := range g.Nodes {
		for _, stmt := range fn.Body {
			stmt.Walk(func(n *parser.Node) bool {
				// Nested function bodies get their own edges
				if n.Type == parser.NodeFunctionDef && n.Name != name {
					return false
				}
				if n.Type == parser.NodeCall && n.Name != "" {
					if _, local := g.Nodes[n.Name]; local {
						g.Edges[name][n.Name] = true
					}
				}
				return true
			})
		}
	}
	return g
}

// DirectRecursions returns the names of functions that call themselves,
// sorted for deterministic output.
func (g *CallGraph) DirectRecursions() []string {
	var names []string
	for name, callees := range g.Edges {
		if callees[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IndirectCycles finds recursion cycles involving two or more distinct
// functions. Depth-first search carries the current path by value per
// branch, so worst-case work stays bounded and no shared visited state
// leaks between branches. Cycles are canonicalized (rotated to their
// lexicographically smallest member) and deduplicated.
func (g *CallGraph) IndirectCycles() [][]string {
	seen := make(map[string]bool)
	var cycles [][]string

	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, start := range names {
		g.dfsCycles(start, []string{start}, map[string]bool{start: true}, seen, &cycles)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i], ">") < strings.Join(cycles[j], ">")
	})
	return cycles
}

func (g *CallGraph) dfsCycles(current string, path []string, onPath map[string]bool, seen map[string]bool, cycles *[][]string) {
	// Bound pathological graphs; local call chains deeper than this are
	// not meaningful recursion reports.
	if len(path) > 50 {
		return
	}

	callees := make([]string, 0, len(g.Edges[current]))
	for callee := range g.Edges[current] {
		callees = append(callees, callee)
	}
	sort.Strings(callees)

	for _, callee := range callees {
		if callee == path[0] {
			if len(path) >= 2 {
				cycle := canonicalizeCycle(path)
				key := strings.Join(cycle, ">")
				if !seen[key] {
					seen[key] = true
					*cycles = append(*cycles, cycle)
				}
			}
			continue
		}
		if onPath[callee] {
			continue
		}

		branchPath := append(append([]string{}, path...), callee)
		branchOnPath := make(map[string]bool, len(onPath)+1)
		for k := range onPath {
			branchOnPath[k] = true
		}
		branchOnPath[callee] = true
		g.dfsCycles(callee, branchPath, branchOnPath, seen, cycles)
	}
}

// canonicalizeCycle rotates a cycle so it starts at its smallest member,
// making equal cycles found from different entry points compare equal.
func canonicalizeCycle(path []string) []string {
	minIdx := 0
	for i, name := range path {
		if name < path[minIdx] {
			minIdx = i
		}
	}
	cycle := make([]string, 0, len(path))
	cycle = append(cycle, path[minIdx:]...)
	cycle = append(cycle, path[:minIdx]...)
	return cycle
}
