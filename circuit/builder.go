package circuit

import (
	"fmt"
	"slices"

	"github.com/fhelium/fhelium/profile"
	"github.com/fhelium/fhelium/store"
)

// The mutation API. Every Add* validates all referenced handles before
// touching any store; once keys are reserved, any late failure releases them
// again, so a failed call never leaves partial state behind.

// AddInput appends an external input producing one value of the given type.
func (sc *Subcircuit) AddInput(typ Operand) (InputID, ValueID, error) {
	ik := sc.inputs.Reserve()
	id := inputID(sc.id, ik)
	out := ValueID{Subcircuit: sc.id, Key: sc.values.Reserve()}

	if err := sc.values.Fill(out.Key, Value{Type: typ, Origin: Origin{Op: id.Op(), Port: 0}}); err != nil {
		sc.rollback([]ValueID{out}, ik, &sc.inputs)
		return InputID{}, ValueID{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := sc.inputs.Fill(ik, InputOp{Out: out, seq: sc.nextSeq()}); err != nil {
		sc.values.Remove(out.Key)
		return InputID{}, ValueID{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	sc.recordStack(id.Op())
	profile.RecordOperation()
	return id, out, nil
}

// AddGate appends a gate operation consuming ins (in port order) and returns
// the produced values. The input count, each input's type and each port's
// access mode are validated against the descriptor before any mutation.
func (sc *Subcircuit) AddGate(g Gate, ins ...ValueID) (GateID, []ValueID, error) {
	if len(ins) != g.InputCount() {
		return GateID{}, nil, &ArityError{Gate: g.Name(), Want: g.InputCount(), Got: len(ins)}
	}

	modes := make([]AccessMode, len(ins))
	for port, in := range ins {
		v, err := sc.lookupValue(in)
		if err != nil {
			return GateID{}, nil, fmt.Errorf("gate %s input %d: %w", g.Name(), port, err)
		}
		want, err := g.InputType(port)
		if err != nil {
			return GateID{}, nil, err
		}
		if v.Type != want {
			return GateID{}, nil, &TypeMismatchError{Gate: g.Name(), Port: port, Want: want, Got: v.Type}
		}
		if modes[port], err = g.AccessMode(port); err != nil {
			return GateID{}, nil, err
		}
	}
	outTypes := make([]Operand, g.OutputCount())
	for port := range outTypes {
		var err error
		if outTypes[port], err = g.OutputType(port); err != nil {
			return GateID{}, nil, err
		}
	}

	gk := sc.gates.Reserve()
	id := gateID(sc.id, gk)
	outs := sc.reserveValues(id.Op(), outTypes)

	op := GateOp{Gate: g, Ins: slices.Clone(ins), Outs: outs, seq: sc.nextSeq()}
	if err := sc.gates.Fill(gk, op); err != nil {
		sc.rollback(outs, gk, &sc.gates)
		return GateID{}, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	for port, in := range ins {
		sc.addDestination(in, Destination{Op: id.Op(), Port: port, Mode: modes[port]})
	}
	sc.recordStack(id.Op())
	profile.RecordOperation()
	return id, outs, nil
}

// AddClone appends a clone of v producing n values of v's type. The clone
// borrows its input; its outputs exist to serve additional Move consumers.
func (sc *Subcircuit) AddClone(v ValueID, n int) (CloneID, []ValueID, error) {
	if n < 1 {
		return CloneID{}, nil, ErrZeroClone
	}
	val, err := sc.lookupValue(v)
	if err != nil {
		return CloneID{}, nil, err
	}
	typ := val.Type

	ck := sc.clones.Reserve()
	id := cloneID(sc.id, ck)
	outTypes := make([]Operand, n)
	for i := range outTypes {
		outTypes[i] = typ
	}
	outs := sc.reserveValues(id.Op(), outTypes)

	if err := sc.clones.Fill(ck, CloneOp{In: v, Outs: outs, seq: sc.nextSeq()}); err != nil {
		sc.rollback(outs, ck, &sc.clones)
		return CloneID{}, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	sc.addDestination(v, Destination{Op: id.Op(), Port: 0, Mode: Borrow})
	sc.recordStack(id.Op())
	profile.RecordOperation()
	return id, outs, nil
}

// AddDrop appends a drop consuming v by move.
func (sc *Subcircuit) AddDrop(v ValueID) (DropID, error) {
	if _, err := sc.lookupValue(v); err != nil {
		return DropID{}, err
	}
	dk := sc.drops.Insert(DropOp{In: v, seq: sc.nextSeq()})
	id := dropID(sc.id, dk)
	sc.addDestination(v, Destination{Op: id.Op(), Port: 0, Mode: Move})
	sc.recordStack(id.Op())
	profile.RecordOperation()
	return id, nil
}

// AddOutput appends an external output consuming v by move.
func (sc *Subcircuit) AddOutput(v ValueID) (OutputID, error) {
	if _, err := sc.lookupValue(v); err != nil {
		return OutputID{}, err
	}
	k := sc.outputs.Insert(OutputOp{In: v, seq: sc.nextSeq()})
	id := outputID(sc.id, k)
	sc.addDestination(v, Destination{Op: id.Op(), Port: 0, Mode: Move})
	sc.recordStack(id.Op())
	profile.RecordOperation()
	return id, nil
}

// RewireDestination makes the destination (op, port) currently recorded on
// from consume to instead. Consumer identity, port and mode are preserved;
// only the source value changes. Used by ownership reconciliation.
func (sc *Subcircuit) RewireDestination(from, to ValueID, dst Destination) error {
	fromVal, err := sc.lookupValue(from)
	if err != nil {
		return err
	}
	toVal, err := sc.lookupValue(to)
	if err != nil {
		return err
	}
	idx := slices.Index(fromVal.Destinations, dst)
	if idx < 0 {
		return fmt.Errorf("%w: %v on %v", ErrDestinationNotFound, dst, from)
	}

	// point the consumer's port at the new value
	switch dst.Op.Kind {
	case KindGate:
		op, ok := sc.gates.Get(dst.Op.Key)
		if !ok {
			return fmt.Errorf("%w: %v", ErrOperationNotFound, dst.Op)
		}
		op.Ins[dst.Port] = to
	case KindClone:
		op, ok := sc.clones.Get(dst.Op.Key)
		if !ok {
			return fmt.Errorf("%w: %v", ErrOperationNotFound, dst.Op)
		}
		op.In = to
	case KindDrop:
		op, ok := sc.drops.Get(dst.Op.Key)
		if !ok {
			return fmt.Errorf("%w: %v", ErrOperationNotFound, dst.Op)
		}
		op.In = to
	case KindOutput:
		op, ok := sc.outputs.Get(dst.Op.Key)
		if !ok {
			return fmt.Errorf("%w: %v", ErrOperationNotFound, dst.Op)
		}
		op.In = to
	default:
		return fmt.Errorf("%w: %v does not consume values", ErrOperationNotFound, dst.Op)
	}

	fromVal.Destinations = slices.Delete(fromVal.Destinations, idx, idx+1)
	toVal.Destinations = append(toVal.Destinations, dst)
	return nil
}

func (sc *Subcircuit) lookupValue(id ValueID) (*Value, error) {
	if id.Subcircuit != sc.id {
		return nil, fmt.Errorf("%w: %v used in subcircuit %d", ErrSubcircuitMismatch, id, sc.id)
	}
	v, ok := sc.values.Get(id.Key)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrValueNotFound, id)
	}
	return v, nil
}

func (sc *Subcircuit) addDestination(id ValueID, d Destination) {
	v, _ := sc.values.Get(id.Key) // validated by the caller
	v.Destinations = append(v.Destinations, d)
}

// reserveValues reserves and fills n produced values for op. Reserve+Fill in
// one step is fine here: the operation key already exists, which is the only
// mutual reference the two-phase dance has to satisfy.
func (sc *Subcircuit) reserveValues(op OperationID, types []Operand) []ValueID {
	outs := make([]ValueID, len(types))
	for port, typ := range types {
		k := sc.values.Reserve()
		_ = sc.values.Fill(k, Value{Type: typ, Origin: Origin{Op: op, Port: port}})
		outs[port] = ValueID{Subcircuit: sc.id, Key: k}
	}
	return outs
}

// rollback releases a reserved operation key and removes any values already
// filled for it, undoing a partially-constructed operation.
func (sc *Subcircuit) rollback(values []ValueID, opKey store.Key, ops interface{ Release(store.Key) error }) {
	for _, v := range values {
		sc.values.Remove(v.Key)
	}
	_ = ops.Release(opKey)
}
