package analysis

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/internal/algo_utils"
)

// Order computes a scheduled topological order per subcircuit using Kahn's
// algorithm with a priority queue. Ready operations pop in (priority desc,
// insertion sequence asc) order; Outputs and Drops run High, Gates Normal,
// Inputs and Clones Low. Delaying producers and hastening consumers shrinks
// the peak number of live values, which is what the wire allocator pays for.
type Order struct{}

func (Order) AnalysisKey() Key { return KeyOrder }

type ScheduleResult struct {
	Sub map[circuit.SubcircuitID]*SubSchedule
}

type SubSchedule struct {
	Ops []circuit.OperationID
	Pos map[circuit.OperationID]int
}

type schedPriority uint8

const (
	prioLow    schedPriority = iota // Input, Clone: produce new live values
	prioNormal                      // Gate
	prioHigh                        // Output, Drop: free live values
)

func priorityOf(kind circuit.OperationKind) schedPriority {
	switch kind {
	case circuit.KindOutput, circuit.KindDrop:
		return prioHigh
	case circuit.KindGate:
		return prioNormal
	default:
		return prioLow
	}
}

func (Order) Run(_ *Analyzer, c *circuit.Circuit) (*ScheduleResult, error) {
	res := &ScheduleResult{Sub: make(map[circuit.SubcircuitID]*SubSchedule)}
	for _, sc := range c.Subcircuits() {
		sub, err := scheduleSubcircuit(sc)
		if err != nil {
			return nil, err
		}
		res.Sub[sc.ID()] = sub
	}
	return res, nil
}

type readyOp struct {
	prio schedPriority
	seq  uint32
	idx  int
}

func scheduleSubcircuit(sc *circuit.Subcircuit) (*SubSchedule, error) {
	ops := sc.Operations()
	index := make(map[circuit.OperationID]int, len(ops))
	for i, op := range ops {
		index[op] = i
	}

	// in-degree counts one edge per consumed port
	indegree := make([]int, len(ops))
	for i, op := range ops {
		consumed, err := sc.Consumed(op)
		if err != nil {
			return nil, err
		}
		indegree[i] = len(consumed)
	}

	ready := algo_utils.NewHeap(func(a, b readyOp) bool {
		if a.prio != b.prio {
			return a.prio > b.prio
		}
		return a.seq < b.seq
	})
	push := func(i int) {
		seq, _ := sc.Seq(ops[i])
		ready.Push(readyOp{prio: priorityOf(ops[i].Kind), seq: seq, idx: i})
	}
	for i := range ops {
		if indegree[i] == 0 {
			push(i)
		}
	}

	scheduled := bitset.New(uint(len(ops)))
	order := make([]circuit.OperationID, 0, len(ops))
	pos := make(map[circuit.OperationID]int, len(ops))

	for ready.Len() > 0 {
		op := ops[ready.Pop().idx]
		pos[op] = len(order)
		order = append(order, op)
		scheduled.Set(uint(index[op]))

		produced, err := sc.Produced(op)
		if err != nil {
			return nil, err
		}
		for _, v := range produced {
			val, ok := sc.Value(v)
			if !ok {
				return nil, errValue(v)
			}
			for _, d := range val.Destinations {
				j := index[d.Op]
				indegree[j]--
				if indegree[j] == 0 {
					push(j)
				}
			}
		}
	}

	if len(order) != len(ops) {
		var remaining []circuit.OperationID
		for i, op := range ops {
			if !scheduled.Test(uint(i)) {
				remaining = append(remaining, op)
			}
		}
		return nil, &CycleError{Subcircuit: sc.ID(), Remaining: remaining}
	}
	return &SubSchedule{Ops: order, Pos: pos}, nil
}
