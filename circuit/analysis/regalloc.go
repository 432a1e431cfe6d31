package analysis

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/fhelium/fhelium/circuit"
)

// Registers allocates a wire (register) to every value via interference
// graph coloring with aggressive last-use reuse: two values interfere when
// their live ranges overlap, except for the gate-output/gate-input pair in
// which the gate is the input's final consumer — the output may then take
// over the input's slot even though the ranges touch. Coloring is greedy,
// highest interference degree first, lowest free color wins.
type Registers struct{}

func (Registers) AnalysisKey() Key { return KeyRegisters }

// AllocationResult assigns a register number to every value, per subcircuit.
// Produced by either allocation strategy.
type AllocationResult struct {
	Sub map[circuit.SubcircuitID]*SubAllocation
}

type SubAllocation struct {
	Register map[circuit.ValueID]int

	// Count is the total number of registers used (peak wire count).
	Count int

	// PerType carries the per-operand-type peak of the linear-scan strategy;
	// nil for the coloring strategy, which shares one register space.
	PerType map[circuit.Operand]int
}

func (Registers) Run(a *Analyzer, c *circuit.Circuit) (*AllocationResult, error) {
	live, err := Get(a, c, Liveness{})
	if err != nil {
		return nil, err
	}

	res := &AllocationResult{Sub: make(map[circuit.SubcircuitID]*SubAllocation)}
	for _, sc := range c.Subcircuits() {
		sub, err := colorSubcircuit(sc, live.Sub[sc.ID()])
		if err != nil {
			return nil, err
		}
		res.Sub[sc.ID()] = sub
	}
	return res, nil
}

func colorSubcircuit(sc *circuit.Subcircuit, live *SubLiveness) (*SubAllocation, error) {
	var ids []circuit.ValueID
	for id := range sc.Values() {
		ids = append(ids, id)
	}
	n := len(ids)
	index := make(map[circuit.ValueID]int, n)
	ranges := make([]Range, n)
	for i, id := range ids {
		index[id] = i
		r, ok := live.Ranges[id]
		if !ok {
			return nil, fmt.Errorf("%w: value %v has no live range", circuit.ErrInternal, id)
		}
		ranges[i] = r
	}

	// last-use reuse pairs: no edge between a dying gate input and that
	// gate's outputs
	reuse := make(map[[2]int]struct{})
	for op, dying := range live.LastUses {
		if op.Kind != circuit.KindGate {
			continue
		}
		outs, err := sc.Produced(op)
		if err != nil {
			return nil, err
		}
		for _, in := range dying {
			for _, out := range outs {
				i, j := index[in], index[out]
				if i > j {
					i, j = j, i
				}
				reuse[[2]int{i, j}] = struct{}{}
			}
		}
	}

	adj := make([]*bitset.BitSet, n)
	degree := make([]int, n)
	for i := range adj {
		adj[i] = bitset.New(uint(n))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !ranges[i].Overlaps(ranges[j]) {
				continue
			}
			if _, ok := reuse[[2]int{i, j}]; ok {
				continue
			}
			adj[i].Set(uint(j))
			adj[j].Set(uint(i))
			degree[i]++
			degree[j]++
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(x, y int) int {
		if degree[x] != degree[y] {
			return degree[y] - degree[x]
		}
		return x - y
	})

	color := make([]int, n)
	for i := range color {
		color[i] = -1
	}
	count := 0
	for _, i := range order {
		used := bitset.New(uint(n + 1))
		for j, ok := adj[i].NextSet(0); ok; j, ok = adj[i].NextSet(j + 1) {
			if c := color[j]; c >= 0 {
				used.Set(uint(c))
			}
		}
		c, ok := used.NextClear(0)
		if !ok {
			// unreachable: n values can need at most n colors
			return nil, fmt.Errorf("%w: no color available for %v", circuit.ErrInternal, ids[i])
		}
		color[i] = int(c)
		if int(c)+1 > count {
			count = int(c) + 1
		}
	}

	regs := make(map[circuit.ValueID]int, n)
	for i, id := range ids {
		regs[id] = color[i]
	}
	return &SubAllocation{Register: regs, Count: count}, nil
}
