// Package anngraph resolves the dependency structure between annotation
// definitions introduced by fixed head/tail references. It builds an
// explicit directed graph over annotation names, rejects cycles at build
// time, and produces a deterministic evaluation order.
package anngraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cortexmark/cortexmark/internal/config"
)

// Graph is the dependency graph over a set of annotation definitions.
type Graph struct {
	defs  map[string]*config.Annotation
	names []string
	// deps maps an annotation to the annotations it requires; dependents is
	// the reverse adjacency.
	deps       map[string]map[string]struct{}
	dependents map[string]map[string]struct{}
}

// Build constructs and validates the dependency graph for the given active
// definitions. Edges to annotations outside the active set are dropped:
// whether such a dependency is satisfiable is decided later, at endpoint
// resolution. A cycle is a configuration error and fails the build.
func Build(defs []*config.Annotation) (*Graph, error) {
	g := &Graph{
		defs:       make(map[string]*config.Annotation, len(defs)),
		deps:       make(map[string]map[string]struct{}, len(defs)),
		dependents: make(map[string]map[string]struct{}, len(defs)),
	}
	for _, def := range defs {
		g.defs[def.Name] = def
		g.names = append(g.names, def.Name)
		g.deps[def.Name] = make(map[string]struct{})
		g.dependents[def.Name] = make(map[string]struct{})
	}
	for _, def := range defs {
		for _, dep := range def.Dependencies() {
			if _, active := g.defs[dep]; !active {
				continue
			}
			g.deps[def.Name][dep] = struct{}{}
			g.dependents[dep][def.Name] = struct{}{}
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, fmt.Errorf("annotation dependency cycle: %s", strings.Join(cycle, " -> "))
	}
	return g, nil
}

// findCycle runs a depth-first search with recursion-stack coloring and
// returns the first cycle found as a name path, or nil.
func (g *Graph) findCycle() []string {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		if permanent[name] {
			return false
		}
		if temporary[name] {
			// Found a back edge; slice the current stack into the cycle.
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			cycle = append(append([]string{}, stack[start:]...), name)
			return true
		}
		temporary[name] = true
		stack = append(stack, name)
		for dep := range g.deps[name] {
			if visit(dep) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		delete(temporary, name)
		permanent[name] = true
		return false
	}

	for _, name := range g.names {
		if !permanent[name] {
			if visit(name) {
				return cycle
			}
		}
	}
	return nil
}

// Order returns a topological order of the active annotations: every
// annotation appears after everything it requires. Ties break by name so
// the order is deterministic.
func (g *Graph) Order() []string {
	indegree := make(map[string]int, len(g.names))
	for name, deps := range g.deps {
		indegree[name] = len(deps)
	}
	var ready []string
	for _, name := range g.names {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	out := make([]string, 0, len(g.names))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		out = append(out, name)

		var unlocked []string
		for dependent := range g.dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
		sort.Strings(ready)
	}
	return out
}

// Dependents returns the names of active annotations that directly require
// the given one, sorted by name.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for dependent := range g.dependents[name] {
		out = append(out, dependent)
	}
	sort.Strings(out)
	return out
}
