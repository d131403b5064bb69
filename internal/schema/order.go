package schema

import (
	"fmt"

	"github.com/verdant-labs/climload/internal/dag"
)

// Graph builds the dependency graph of the family's tables from their
// foreign keys. A foreign key to an undeclared table is a definition error.
func (f *Family) Graph() (*dag.Graph, error) {
	g := dag.NewGraph()
	for _, t := range f.Tables {
		g.AddNode(t.Name)
	}
	for _, t := range f.Tables {
		for _, fk := range t.ForeignKeys {
			if !g.HasNode(fk.Parent) {
				return nil, fmt.Errorf("table %s references undeclared table %s", t.Name, fk.Parent)
			}
			if err := g.AddEdge(fk.Parent, t.Name); err != nil {
				return nil, err
			}
		}
	}
	if hasCycle, path := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("family %s: dependency cycle: %v", f.Name, path)
	}
	return g, nil
}

// LoadOrder returns the family's tables parents-first, the order in which
// they must be created and populated.
func (f *Family) LoadOrder() ([]*Table, error) {
	g, err := f.Graph()
	if err != nil {
		return nil, err
	}
	names, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	ordered := make([]*Table, 0, len(names))
	for _, name := range names {
		t, ok := f.Table(name)
		if !ok {
			return nil, fmt.Errorf("family %s: unknown table %s in order", f.Name, name)
		}
		ordered = append(ordered, t)
	}
	return ordered, nil
}

// DropOrder returns the family's tables children-first, the order in which
// they can be dropped without breaking references.
func (f *Family) DropOrder() ([]*Table, error) {
	ordered, err := f.LoadOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	return ordered, nil
}
