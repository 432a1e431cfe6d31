package optimize

import (
	"fmt"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
	"github.com/fhelium/fhelium/logger"
)

// EliminateDeadCode rebuilds every subcircuit containing unreachable
// elements, copying forward only what some output depends on (plus drops on
// live values) and remapping value ids. Subcircuits with nothing dead are
// left untouched; when that holds everywhere the pass is a no-op and the
// whole analyzer cache survives.
type EliminateDeadCode struct{}

func (EliminateDeadCode) Name() string { return "eliminate-dead-code" }

func (EliminateDeadCode) Run(c *circuit.Circuit, a *analysis.Analyzer) (Preserved, error) {
	reach, err := analysis.Get(a, c, analysis.Reachability{})
	if err != nil {
		return PreserveNone(), err
	}

	log := logger.Logger()
	changed := false
	for _, sc := range c.Subcircuits() {
		sub := reach.Sub[sc.ID()]
		if sub.AllReachable {
			continue
		}
		// keep reachable operations in their original relative order; the
		// copy re-sorts to dependency order where rewiring disturbed it
		var live []circuit.OperationID
		for _, op := range sc.Operations() {
			if sub.Op(op) {
				live = append(live, op)
			}
		}
		removed := sc.NbOperations() - len(live)

		src := sc
		err := c.Rebuild(sc.ID(), func(dst *circuit.Subcircuit) error {
			remap, err := src.CopyInto(dst, live)
			if err != nil {
				return err
			}
			return redropOrphanedMoves(src, dst, remap)
		})
		if err != nil {
			return PreserveNone(), err
		}
		changed = true
		log.Debug().
			Uint32("subcircuit", uint32(src.ID())).
			Int("removed", removed).
			Msg("dead operations eliminated")
	}
	if !changed {
		return PreserveAll(), nil
	}
	return PreserveNone(), nil
}

// redropOrphanedMoves restores the one-move invariant on a rebuilt
// subcircuit. A value can stay reachable through a Borrow while its single
// Move consumer was dead (a moving gate whose results feed no output); the
// copy then sheds that consumer, and the value would leak. Each such value
// gets a fresh Drop, in store order for determinism.
func redropOrphanedMoves(src, dst *circuit.Subcircuit, remap map[circuit.ValueID]circuit.ValueID) error {
	inverse := make(map[circuit.ValueID]circuit.ValueID, len(remap))
	for from, to := range remap {
		inverse[to] = from
	}
	var orphaned []circuit.ValueID
	for id, v := range dst.Values() {
		if v.MoveCount() > 0 {
			continue
		}
		old, ok := src.Value(inverse[id])
		if !ok {
			return fmt.Errorf("%w: %v has no source value", circuit.ErrInternal, id)
		}
		if old.MoveCount() > 0 {
			orphaned = append(orphaned, id)
		}
	}
	for _, id := range orphaned {
		if _, err := dst.AddDrop(id); err != nil {
			return err
		}
	}
	return nil
}
