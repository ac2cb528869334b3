package modules

import (
	"fmt"
	"sync"
)

// Graph is an in-memory module graph. Edges are stored by ID so a dependency
// may be declared before the module it names is added.
type Graph struct {
	mu      sync.RWMutex
	modules map[string]Module
	order   []string
	deps    map[string][]string
}

func NewGraph() *Graph {
	return &Graph{
		modules: make(map[string]Module),
		deps:    make(map[string][]string),
	}
}

// AddModule inserts or replaces a module. Insertion order is kept for Modules().
func (g *Graph) AddModule(m Module) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.modules[m.ID]; !ok {
		g.order = append(g.order, m.ID)
	}
	g.modules[m.ID] = m
}

// AddDependency records a direct edge from -> to. Repeated edges are ignored.
func (g *Graph) AddDependency(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.deps[from] {
		if existing == to {
			return
		}
	}
	g.deps[from] = append(g.deps[from], to)
}

// Module looks up a module by ID.
func (g *Graph) Module(id string) (Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.modules[id]
	return m, ok
}

// Modules returns every module in insertion order.
func (g *Graph) Modules() []Module {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Module, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.modules[id])
	}
	return out
}

func (g *Graph) ModuleCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.modules)
}

// Dependencies returns the direct dependencies of m. Edges to IDs that were
// never added are skipped; an unknown m has no dependencies.
func (g *Graph) Dependencies(m Module) ([]Module, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.modules[m.ID]; !ok {
		return nil, nil
	}
	out := make([]Module, 0, len(g.deps[m.ID]))
	for _, id := range g.deps[m.ID] {
		dep, ok := g.modules[id]
		if !ok {
			continue
		}
		out = append(out, dep)
	}
	return out, nil
}

// Lookup resolves id to a module or reports that it is missing.
func (g *Graph) Lookup(id string) (Module, error) {
	m, ok := g.Module(id)
	if !ok {
		return Module{}, fmt.Errorf("module %q is not part of the project graph", id)
	}
	return m, nil
}
