package circuit

import (
	"fmt"
	"iter"
	"slices"

	"github.com/fhelium/fhelium/debug"
	"github.com/fhelium/fhelium/store"
)

// Subcircuit is an independent SSA region: it owns its operations and values
// and references them only by handle. Handles are meaningless outside their
// subcircuit. A Subcircuit is single-owner; it performs no locking.
type Subcircuit struct {
	id SubcircuitID

	inputs  store.Store[InputOp]
	gates   store.Store[GateOp]
	clones  store.Store[CloneOp]
	drops   store.Store[DropOp]
	outputs store.Store[OutputOp]
	values  store.Store[Value]

	// insertion counter, tie-break source for scheduling and iteration
	seq uint32

	// creation stacks, recorded only when built with the debug tag
	stacks map[OperationID]string
}

func newSubcircuit(id SubcircuitID) *Subcircuit {
	return &Subcircuit{id: id}
}

// ID returns the subcircuit's id within its circuit.
func (sc *Subcircuit) ID() SubcircuitID { return sc.id }

func (sc *Subcircuit) NbValues() int { return sc.values.Len() }

func (sc *Subcircuit) NbOperations() int {
	return sc.inputs.Len() + sc.gates.Len() + sc.clones.Len() + sc.drops.Len() + sc.outputs.Len()
}

// Value returns the value addressed by id. The pointer is invalidated by any
// mutation of the subcircuit.
func (sc *Subcircuit) Value(id ValueID) (*Value, bool) {
	if id.Subcircuit != sc.id {
		return nil, false
	}
	return sc.values.Get(id.Key)
}

func (sc *Subcircuit) Input(id InputID) (*InputOp, bool) {
	if id.id.Subcircuit != sc.id {
		return nil, false
	}
	return sc.inputs.Get(id.id.Key)
}

func (sc *Subcircuit) Gate(id GateID) (*GateOp, bool) {
	if id.id.Subcircuit != sc.id {
		return nil, false
	}
	return sc.gates.Get(id.id.Key)
}

func (sc *Subcircuit) Clone(id CloneID) (*CloneOp, bool) {
	if id.id.Subcircuit != sc.id {
		return nil, false
	}
	return sc.clones.Get(id.id.Key)
}

func (sc *Subcircuit) Drop(id DropID) (*DropOp, bool) {
	if id.id.Subcircuit != sc.id {
		return nil, false
	}
	return sc.drops.Get(id.id.Key)
}

func (sc *Subcircuit) Output(id OutputID) (*OutputOp, bool) {
	if id.id.Subcircuit != sc.id {
		return nil, false
	}
	return sc.outputs.Get(id.id.Key)
}

// Contains reports whether op is a live operation of this subcircuit.
func (sc *Subcircuit) Contains(op OperationID) bool {
	if op.Subcircuit != sc.id {
		return false
	}
	switch op.Kind {
	case KindInput:
		return sc.inputs.Contains(op.Key)
	case KindGate:
		return sc.gates.Contains(op.Key)
	case KindClone:
		return sc.clones.Contains(op.Key)
	case KindDrop:
		return sc.drops.Contains(op.Key)
	case KindOutput:
		return sc.outputs.Contains(op.Key)
	}
	return false
}

func (sc *Subcircuit) Values() iter.Seq2[ValueID, *Value] {
	return func(yield func(ValueID, *Value) bool) {
		for k, v := range sc.values.All() {
			if !yield(ValueID{Subcircuit: sc.id, Key: k}, v) {
				return
			}
		}
	}
}

func (sc *Subcircuit) Inputs() iter.Seq2[InputID, *InputOp] {
	return func(yield func(InputID, *InputOp) bool) {
		for k, op := range sc.inputs.All() {
			if !yield(inputID(sc.id, k), op) {
				return
			}
		}
	}
}

func (sc *Subcircuit) Gates() iter.Seq2[GateID, *GateOp] {
	return func(yield func(GateID, *GateOp) bool) {
		for k, op := range sc.gates.All() {
			if !yield(gateID(sc.id, k), op) {
				return
			}
		}
	}
}

func (sc *Subcircuit) Clones() iter.Seq2[CloneID, *CloneOp] {
	return func(yield func(CloneID, *CloneOp) bool) {
		for k, op := range sc.clones.All() {
			if !yield(cloneID(sc.id, k), op) {
				return
			}
		}
	}
}

func (sc *Subcircuit) Drops() iter.Seq2[DropID, *DropOp] {
	return func(yield func(DropID, *DropOp) bool) {
		for k, op := range sc.drops.All() {
			if !yield(dropID(sc.id, k), op) {
				return
			}
		}
	}
}

func (sc *Subcircuit) Outputs() iter.Seq2[OutputID, *OutputOp] {
	return func(yield func(OutputID, *OutputOp) bool) {
		for k, op := range sc.outputs.All() {
			if !yield(outputID(sc.id, k), op) {
				return
			}
		}
	}
}

// Operations returns every live operation in insertion order.
func (sc *Subcircuit) Operations() []OperationID {
	type entry struct {
		seq uint32
		id  OperationID
	}
	ops := make([]entry, 0, sc.NbOperations())
	for id, op := range sc.Inputs() {
		ops = append(ops, entry{op.seq, id.Op()})
	}
	for id, op := range sc.Gates() {
		ops = append(ops, entry{op.seq, id.Op()})
	}
	for id, op := range sc.Clones() {
		ops = append(ops, entry{op.seq, id.Op()})
	}
	for id, op := range sc.Drops() {
		ops = append(ops, entry{op.seq, id.Op()})
	}
	for id, op := range sc.Outputs() {
		ops = append(ops, entry{op.seq, id.Op()})
	}
	slices.SortFunc(ops, func(a, b entry) int { return int(a.seq) - int(b.seq) })
	res := make([]OperationID, len(ops))
	for i, e := range ops {
		res[i] = e.id
	}
	return res
}

// Seq returns the insertion sequence number of op.
func (sc *Subcircuit) Seq(op OperationID) (uint32, bool) {
	if op.Subcircuit != sc.id {
		return 0, false
	}
	switch op.Kind {
	case KindInput:
		if o, ok := sc.inputs.Get(op.Key); ok {
			return o.seq, true
		}
	case KindGate:
		if o, ok := sc.gates.Get(op.Key); ok {
			return o.seq, true
		}
	case KindClone:
		if o, ok := sc.clones.Get(op.Key); ok {
			return o.seq, true
		}
	case KindDrop:
		if o, ok := sc.drops.Get(op.Key); ok {
			return o.seq, true
		}
	case KindOutput:
		if o, ok := sc.outputs.Get(op.Key); ok {
			return o.seq, true
		}
	}
	return 0, false
}

// Consumed returns the values op consumes, in port order.
func (sc *Subcircuit) Consumed(op OperationID) ([]ValueID, error) {
	if op.Subcircuit != sc.id {
		return nil, fmt.Errorf("%w: %v in subcircuit %d", ErrSubcircuitMismatch, op, sc.id)
	}
	switch op.Kind {
	case KindInput:
		if sc.inputs.Contains(op.Key) {
			return nil, nil
		}
	case KindGate:
		if o, ok := sc.gates.Get(op.Key); ok {
			return o.Ins, nil
		}
	case KindClone:
		if o, ok := sc.clones.Get(op.Key); ok {
			return []ValueID{o.In}, nil
		}
	case KindDrop:
		if o, ok := sc.drops.Get(op.Key); ok {
			return []ValueID{o.In}, nil
		}
	case KindOutput:
		if o, ok := sc.outputs.Get(op.Key); ok {
			return []ValueID{o.In}, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrOperationNotFound, op)
}

// Produced returns the values op produces, in port order.
func (sc *Subcircuit) Produced(op OperationID) ([]ValueID, error) {
	if op.Subcircuit != sc.id {
		return nil, fmt.Errorf("%w: %v in subcircuit %d", ErrSubcircuitMismatch, op, sc.id)
	}
	switch op.Kind {
	case KindInput:
		if o, ok := sc.inputs.Get(op.Key); ok {
			return []ValueID{o.Out}, nil
		}
	case KindGate:
		if o, ok := sc.gates.Get(op.Key); ok {
			return o.Outs, nil
		}
	case KindClone:
		if o, ok := sc.clones.Get(op.Key); ok {
			return o.Outs, nil
		}
	case KindDrop:
		if sc.drops.Contains(op.Key) {
			return nil, nil
		}
	case KindOutput:
		if sc.outputs.Contains(op.Key) {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrOperationNotFound, op)
}

// DebugStack returns the creation stack recorded for op, or "" when the
// binary was not built with the debug tag.
func (sc *Subcircuit) DebugStack(op OperationID) string {
	return sc.stacks[op]
}

func (sc *Subcircuit) recordStack(op OperationID) {
	if !debug.Debug {
		return
	}
	if sc.stacks == nil {
		sc.stacks = make(map[OperationID]string)
	}
	sc.stacks[op] = debug.Stack()
}

func (sc *Subcircuit) nextSeq() uint32 {
	s := sc.seq
	sc.seq++
	return s
}
