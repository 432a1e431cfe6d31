package analysis

import (
	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/internal/algo_utils"
)

// Components computes connected components of every subcircuit's operation
// graph. Two operations are connected when one consumes a value the other
// produces; inputs and outputs attach through their single edge.
type Components struct{}

func (Components) AnalysisKey() Key { return KeyComponents }

// ComponentsResult holds per-subcircuit component assignments. Component ids
// are dense, 0..Count-1, in first-seen operation order.
type ComponentsResult struct {
	Sub map[circuit.SubcircuitID]*SubComponents
}

type SubComponents struct {
	Count int
	Of    map[circuit.OperationID]int
}

// Members returns the operations of component id, in insertion order of the
// given operation list.
func (sc *SubComponents) Members(ops []circuit.OperationID, id int) []circuit.OperationID {
	var members []circuit.OperationID
	for _, op := range ops {
		if sc.Of[op] == id {
			members = append(members, op)
		}
	}
	return members
}

func (Components) Run(_ *Analyzer, c *circuit.Circuit) (*ComponentsResult, error) {
	res := &ComponentsResult{Sub: make(map[circuit.SubcircuitID]*SubComponents)}
	for _, sc := range c.Subcircuits() {
		ops := sc.Operations()
		index := make(map[circuit.OperationID]int, len(ops))
		for i, op := range ops {
			index[op] = i
		}

		uf := algo_utils.NewUnionFind(len(ops))
		for i, op := range ops {
			consumed, err := sc.Consumed(op)
			if err != nil {
				return nil, err
			}
			for _, v := range consumed {
				val, ok := sc.Value(v)
				if !ok {
					return nil, errValue(v)
				}
				uf.Union(index[val.Origin.Op], i)
			}
		}

		roots, count := uf.Roots()
		of := make(map[circuit.OperationID]int, len(ops))
		for i, op := range ops {
			of[op] = roots[i]
		}
		res.Sub[sc.ID()] = &SubComponents{Count: count, Of: of}
	}
	return res, nil
}
