// Package circuit implements the SSA intermediate representation for
// arithmetic and boolean computation circuits: typed values with explicit
// borrow/move ownership, the five operation kinds (Input, Gate, Clone, Drop,
// Output), and the builder and rewrite API the optimizer passes use.
//
// A Circuit is an ordered collection of Subcircuits. Each Subcircuit is an
// independent SSA region; handles never cross subcircuit boundaries.
package circuit

import "fmt"

// Circuit owns an ordered collection of subcircuits, each independently
// schedulable once partitioned.
type Circuit struct {
	subs  []*Subcircuit
	index map[SubcircuitID]int
	next  SubcircuitID
}

func New() *Circuit {
	return &Circuit{index: make(map[SubcircuitID]int)}
}

// NewSubcircuit appends a fresh empty subcircuit and returns it.
func (c *Circuit) NewSubcircuit() *Subcircuit {
	sc := newSubcircuit(c.next)
	c.next++
	c.index[sc.id] = len(c.subs)
	c.subs = append(c.subs, sc)
	return sc
}

// Subcircuit returns the subcircuit with the given id.
func (c *Circuit) Subcircuit(id SubcircuitID) (*Subcircuit, error) {
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSubcircuitNotFound, id)
	}
	return c.subs[i], nil
}

// Subcircuits returns the subcircuits in order. The returned slice is owned
// by the circuit; callers must not modify it.
func (c *Circuit) Subcircuits() []*Subcircuit {
	return c.subs
}

// Rebuild replaces the subcircuit id with a fresh one populated by build.
// build receives the empty replacement; the original stays in place (and
// reachable through Subcircuit) until build returns nil, so a failing
// rebuild leaves the circuit untouched. Used by dead-code elimination.
func (c *Circuit) Rebuild(id SubcircuitID, build func(dst *Subcircuit) error) error {
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSubcircuitNotFound, id)
	}
	dst := newSubcircuit(id)
	if err := build(dst); err != nil {
		return err
	}
	c.subs[i] = dst
	return nil
}
