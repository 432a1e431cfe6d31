package optimize

import (
	"fmt"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
)

// ReconcileOwnership repairs the linear-SSA invariant: every value must be
// moved exactly once. Leaked values (zero Move destinations) get a Drop;
// overconsumed values (n > 1 Move destinations) get a Clone with n-1
// outputs, and every Move destination but the first is rewired to consume a
// clone output instead — same consumer, same port, only the source value
// changes. Borrow destinations are untouched.
type ReconcileOwnership struct{}

func (ReconcileOwnership) Name() string { return "reconcile-ownership" }

func (ReconcileOwnership) Run(c *circuit.Circuit, a *analysis.Analyzer) (Preserved, error) {
	issues, err := analysis.Get(a, c, analysis.Ownership{})
	if err != nil {
		return PreserveNone(), err
	}
	if !issues.HasIssues() {
		return PreserveAll(), nil
	}

	for _, sc := range c.Subcircuits() {
		subIssues := issues.Sub[sc.ID()]
		if len(subIssues) == 0 {
			continue
		}
		// iterate values in store order so inserted operations are deterministic
		var pending []circuit.ValueID
		for id := range sc.Values() {
			if _, ok := subIssues[id]; ok {
				pending = append(pending, id)
			}
		}
		for _, id := range pending {
			issue := subIssues[id]
			switch issue.Kind {
			case analysis.Leaked:
				if _, err := sc.AddDrop(id); err != nil {
					return PreserveNone(), err
				}
			case analysis.Overconsumed:
				if err := splitMoves(sc, id); err != nil {
					return PreserveNone(), err
				}
			}
		}
	}
	return PreserveNone(), nil
}

func splitMoves(sc *circuit.Subcircuit, id circuit.ValueID) error {
	v, ok := sc.Value(id)
	if !ok {
		return fmt.Errorf("%w: %v", circuit.ErrValueNotFound, id)
	}
	var moves []circuit.Destination
	for _, d := range v.Destinations {
		if d.Mode == circuit.Move {
			moves = append(moves, d)
		}
	}
	// the first Move keeps the original value; the clone serves the rest
	_, outs, err := sc.AddClone(id, len(moves)-1)
	if err != nil {
		return err
	}
	for i, d := range moves[1:] {
		if err := sc.RewireDestination(id, outs[i], d); err != nil {
			return err
		}
	}
	return nil
}
