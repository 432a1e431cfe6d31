package optimize

import (
	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
	"github.com/fhelium/fhelium/logger"
)

// PartitionSubcircuits splits every subcircuit holding several disjoint
// islands into one subcircuit per connected component: the largest component
// stays put, each other component is extracted into a new subcircuit. The
// result is a circuit whose subcircuits are independently schedulable
// partitions.
type PartitionSubcircuits struct{}

func (PartitionSubcircuits) Name() string { return "partition-subcircuits" }

func (PartitionSubcircuits) Run(c *circuit.Circuit, a *analysis.Analyzer) (Preserved, error) {
	comps, err := analysis.Get(a, c, analysis.Components{})
	if err != nil {
		return PreserveNone(), err
	}

	log := logger.Logger()
	changed := false
	// splitting appends subcircuits; iterate a snapshot of the originals
	original := make([]*circuit.Subcircuit, len(c.Subcircuits()))
	copy(original, c.Subcircuits())

	for _, sc := range original {
		sub := comps.Sub[sc.ID()]
		if sub.Count <= 1 {
			continue
		}

		ops := sc.Operations()
		sizes := make([]int, sub.Count)
		for _, op := range ops {
			sizes[sub.Of[op]]++
		}
		keep := 0
		for comp, size := range sizes {
			if size > sizes[keep] {
				keep = comp
			}
		}

		for comp := 0; comp < sub.Count; comp++ {
			if comp == keep {
				continue
			}
			newID, err := c.Split(sc.ID(), sub.Members(ops, comp))
			if err != nil {
				return PreserveNone(), err
			}
			log.Debug().
				Uint32("from", uint32(sc.ID())).
				Uint32("to", uint32(newID)).
				Int("operations", sizes[comp]).
				Msg("component split into new subcircuit")
		}
		changed = true
	}
	if !changed {
		return PreserveAll(), nil
	}
	return PreserveNone(), nil
}
