package analysis

import (
	"fmt"
	"slices"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/internal/algo_utils"
)

// LinearScan is the alternative allocation strategy: live ranges are grouped
// by operand type and scanned in birth order; expired intervals return their
// register to a free pool, new values take the smallest free register or
// open a fresh one. Register numbers are per-type and then packed into one
// global wire space so the scheduler can consume either strategy.
type LinearScan struct{}

func (LinearScan) AnalysisKey() Key { return KeyLinearScan }

func (LinearScan) Run(a *Analyzer, c *circuit.Circuit) (*AllocationResult, error) {
	live, err := Get(a, c, Liveness{})
	if err != nil {
		return nil, err
	}

	res := &AllocationResult{Sub: make(map[circuit.SubcircuitID]*SubAllocation)}
	for _, sc := range c.Subcircuits() {
		sub, err := scanSubcircuit(sc, live.Sub[sc.ID()])
		if err != nil {
			return nil, err
		}
		res.Sub[sc.ID()] = sub
	}
	return res, nil
}

type interval struct {
	id    circuit.ValueID
	birth int
	death int
}

func scanSubcircuit(sc *circuit.Subcircuit, live *SubLiveness) (*SubAllocation, error) {
	groups := make(map[circuit.Operand][]interval)
	for id, v := range sc.Values() {
		r, ok := live.Ranges[id]
		if !ok {
			return nil, fmt.Errorf("%w: value %v has no live range", circuit.ErrInternal, id)
		}
		groups[v.Type] = append(groups[v.Type], interval{id: id, birth: r.Birth, death: r.Death})
	}

	// deterministic type order for the global packing
	types := make([]circuit.Operand, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	slices.Sort(types)

	sub := &SubAllocation{
		Register: make(map[circuit.ValueID]int),
		PerType:  make(map[circuit.Operand]int, len(groups)),
	}
	local := make(map[circuit.ValueID]int)

	for _, t := range types {
		ivs := groups[t]
		slices.SortFunc(ivs, func(x, y interval) int {
			if x.birth != y.birth {
				return x.birth - y.birth
			}
			return x.death - y.death
		})

		type active struct {
			death int
			reg   int
		}
		actives := algo_utils.NewHeap(func(x, y active) bool { return x.death < y.death })
		free := algo_utils.NewHeap(func(x, y int) bool { return x < y })
		next, peak := 0, 0

		for _, iv := range ivs {
			for actives.Len() > 0 && actives.Peek().death <= iv.birth {
				free.Push(actives.Pop().reg)
			}
			var reg int
			if free.Len() > 0 {
				reg = free.Pop()
			} else {
				reg = next
				next++
				if next > peak {
					peak = next
				}
			}
			local[iv.id] = reg
			actives.Push(active{death: iv.death, reg: reg})
		}
		sub.PerType[t] = peak
	}

	// pack the per-type register spaces into consecutive wire numbers
	base := 0
	for _, t := range types {
		for _, iv := range groups[t] {
			sub.Register[iv.id] = base + local[iv.id]
		}
		base += sub.PerType[t]
	}
	sub.Count = base
	return sub, nil
}
