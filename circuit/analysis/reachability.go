package analysis

import "github.com/fhelium/fhelium/circuit"

// Reachability walks backward from every output's consumed value through
// producers, marking the values and operations an output transitively
// depends on. Anything unmarked is dead.
//
// One extension over the pure backward walk: a Drop consuming a reachable
// value is itself marked reachable. A drop on a live value carries that
// value's single Move destination, and stripping it would undo ownership
// reconciliation; drops on dead values still die with them.
type Reachability struct{}

func (Reachability) AnalysisKey() Key { return KeyReachability }

type ReachabilityResult struct {
	Sub map[circuit.SubcircuitID]*SubReachability
}

type SubReachability struct {
	Ops    map[circuit.OperationID]struct{}
	Values map[circuit.ValueID]struct{}

	// AllReachable is true when nothing in the subcircuit is dead; dead-code
	// elimination is a no-op in that case.
	AllReachable bool
}

func (r *SubReachability) Op(op circuit.OperationID) bool {
	_, ok := r.Ops[op]
	return ok
}

func (r *SubReachability) Value(v circuit.ValueID) bool {
	_, ok := r.Values[v]
	return ok
}

func (Reachability) Run(_ *Analyzer, c *circuit.Circuit) (*ReachabilityResult, error) {
	res := &ReachabilityResult{Sub: make(map[circuit.SubcircuitID]*SubReachability)}
	for _, sc := range c.Subcircuits() {
		sub := &SubReachability{
			Ops:    make(map[circuit.OperationID]struct{}),
			Values: make(map[circuit.ValueID]struct{}),
		}

		var stack []circuit.OperationID
		for id := range sc.Outputs() {
			stack = append(stack, id.Op())
		}
		for len(stack) > 0 {
			op := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := sub.Ops[op]; seen {
				continue
			}
			sub.Ops[op] = struct{}{}

			// everything a live operation produces survives with it, even
			// ports nothing consumes
			produced, err := sc.Produced(op)
			if err != nil {
				return nil, err
			}
			for _, v := range produced {
				sub.Values[v] = struct{}{}
			}

			consumed, err := sc.Consumed(op)
			if err != nil {
				return nil, err
			}
			for _, v := range consumed {
				if _, seen := sub.Values[v]; seen {
					continue
				}
				sub.Values[v] = struct{}{}
				val, ok := sc.Value(v)
				if !ok {
					return nil, errValue(v)
				}
				stack = append(stack, val.Origin.Op)
			}
		}

		// keep drops whose input survived the walk
		for id, op := range sc.Drops() {
			if sub.Value(op.In) {
				sub.Ops[id.Op()] = struct{}{}
			}
		}

		sub.AllReachable = len(sub.Ops) == sc.NbOperations() && len(sub.Values) == sc.NbValues()
		res.Sub[sc.ID()] = sub
	}
	return res, nil
}
