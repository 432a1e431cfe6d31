package circuit

import (
	"fmt"
	"slices"
)

// Split extracts ops — which must form one closed connected component of the
// source subcircuit — into a brand-new subcircuit, remapping every internal
// value id. It returns the new subcircuit's id.
//
// The set is validated before anything moves: every value consumed by a set
// member must be produced inside the set, and every consumer of a value
// produced inside the set must itself be a member. An incomplete set fails
// with IncompleteExtractionError and leaves the source unmodified.
func (c *Circuit) Split(srcID SubcircuitID, ops []OperationID) (SubcircuitID, error) {
	src, err := c.Subcircuit(srcID)
	if err != nil {
		return 0, err
	}

	set := make(map[OperationID]struct{}, len(ops))
	for _, op := range ops {
		if op.Subcircuit != srcID {
			return 0, fmt.Errorf("%w: %v extracted from subcircuit %d", ErrSubcircuitMismatch, op, srcID)
		}
		if !src.Contains(op) {
			return 0, fmt.Errorf("%w: %v", ErrOperationNotFound, op)
		}
		set[op] = struct{}{}
	}

	// consumer closure: a value produced inside the set must not feed an
	// operation left behind.
	for op := range set {
		produced, _ := src.Produced(op)
		for _, v := range produced {
			val, _ := src.Value(v)
			for _, d := range val.Destinations {
				if _, in := set[d.Op]; !in {
					return 0, &IncompleteExtractionError{Remaining: []OperationID{d.Op}}
				}
			}
		}
	}

	order, err := src.subsetTopoOrder(set)
	if err != nil {
		return 0, err
	}

	// replay the component into a fresh subcircuit, remapping value ids
	dst := c.NewSubcircuit()
	remap := make(map[ValueID]ValueID)
	if err := src.replay(dst, order, remap); err != nil {
		// internal: the set was validated, replay cannot legally fail
		c.dropLast()
		return 0, fmt.Errorf("%w: split replay: %v", ErrInternal, err)
	}

	// detach the component from the source
	for _, op := range order {
		produced, _ := src.Produced(op)
		for _, v := range produced {
			src.values.Remove(v.Key)
		}
		switch op.Kind {
		case KindInput:
			src.inputs.Remove(op.Key)
		case KindGate:
			src.gates.Remove(op.Key)
		case KindClone:
			src.clones.Remove(op.Key)
		case KindDrop:
			src.drops.Remove(op.Key)
		case KindOutput:
			src.outputs.Remove(op.Key)
		}
		delete(src.stacks, op)
	}
	return dst.id, nil
}

// CopyInto replays ops into dst in dependency order, returning the old→new
// value id mapping. The set must be closed on the producing side: every
// value an op consumes must be produced by another member. Consumers outside
// the set are simply not recorded on the copies — dead-code elimination
// relies on this to shed unreachable consumers of live values.
func (sc *Subcircuit) CopyInto(dst *Subcircuit, ops []OperationID) (map[ValueID]ValueID, error) {
	set := make(map[OperationID]struct{}, len(ops))
	for _, op := range ops {
		if op.Subcircuit != sc.id {
			return nil, fmt.Errorf("%w: %v copied from subcircuit %d", ErrSubcircuitMismatch, op, sc.id)
		}
		if !sc.Contains(op) {
			return nil, fmt.Errorf("%w: %v", ErrOperationNotFound, op)
		}
		set[op] = struct{}{}
	}
	order, err := sc.subsetTopoOrder(set)
	if err != nil {
		return nil, err
	}
	remap := make(map[ValueID]ValueID)
	if err := sc.replay(dst, order, remap); err != nil {
		return nil, err
	}
	return remap, nil
}

// subsetTopoOrder orders the given operation set so that every value's
// producer precedes its consumers, preferring original insertion order.
// Repeated sweeps over the unprocessed members double as non-termination
// detection: a sweep without progress means some member depends on an
// operation outside the set. O(n^2) worst case, fine at circuit sizes.
func (sc *Subcircuit) subsetTopoOrder(set map[OperationID]struct{}) ([]OperationID, error) {
	pending := make([]OperationID, 0, len(set))
	for _, op := range sc.Operations() { // insertion order
		if _, in := set[op]; in {
			pending = append(pending, op)
		}
	}

	order := make([]OperationID, 0, len(pending))
	placed := make(map[ValueID]struct{})
	for len(pending) > 0 {
		progress := false
		rest := pending[:0]
		for _, op := range pending {
			consumed, _ := sc.Consumed(op)
			ready := true
			for _, v := range consumed {
				if _, ok := placed[v]; !ok {
					ready = false
					break
				}
			}
			if !ready {
				rest = append(rest, op)
				continue
			}
			produced, _ := sc.Produced(op)
			for _, v := range produced {
				placed[v] = struct{}{}
			}
			order = append(order, op)
			progress = true
		}
		if !progress {
			return nil, &IncompleteExtractionError{Remaining: slices.Clone(rest)}
		}
		pending = rest
	}
	return order, nil
}

// replay re-creates order (a dependency-ordered operation list of sc) inside
// dst through the regular builder, filling remap with old→new value ids.
func (sc *Subcircuit) replay(dst *Subcircuit, order []OperationID, remap map[ValueID]ValueID) error {
	mapIns := func(ins []ValueID) ([]ValueID, error) {
		mapped := make([]ValueID, len(ins))
		for i, v := range ins {
			nv, ok := remap[v]
			if !ok {
				return nil, fmt.Errorf("%w: %v", ErrValueNotFound, v)
			}
			mapped[i] = nv
		}
		return mapped, nil
	}

	for _, opID := range order {
		switch opID.Kind {
		case KindInput:
			op, _ := sc.inputs.Get(opID.Key)
			val, _ := sc.values.Get(op.Out.Key)
			_, out, err := dst.AddInput(val.Type)
			if err != nil {
				return err
			}
			remap[op.Out] = out
		case KindGate:
			op, _ := sc.gates.Get(opID.Key)
			ins, err := mapIns(op.Ins)
			if err != nil {
				return err
			}
			_, outs, err := dst.AddGate(op.Gate, ins...)
			if err != nil {
				return err
			}
			for i, o := range op.Outs {
				remap[o] = outs[i]
			}
		case KindClone:
			op, _ := sc.clones.Get(opID.Key)
			in, ok := remap[op.In]
			if !ok {
				return fmt.Errorf("%w: %v", ErrValueNotFound, op.In)
			}
			_, outs, err := dst.AddClone(in, len(op.Outs))
			if err != nil {
				return err
			}
			for i, o := range op.Outs {
				remap[o] = outs[i]
			}
		case KindDrop:
			op, _ := sc.drops.Get(opID.Key)
			in, ok := remap[op.In]
			if !ok {
				return fmt.Errorf("%w: %v", ErrValueNotFound, op.In)
			}
			if _, err := dst.AddDrop(in); err != nil {
				return err
			}
		case KindOutput:
			op, _ := sc.outputs.Get(opID.Key)
			in, ok := remap[op.In]
			if !ok {
				return fmt.Errorf("%w: %v", ErrValueNotFound, op.In)
			}
			if _, err := dst.AddOutput(in); err != nil {
				return err
			}
		}
	}
	return nil
}

// dropLast removes the most recently added subcircuit; only used to undo a
// failed Split.
func (c *Circuit) dropLast() {
	last := c.subs[len(c.subs)-1]
	delete(c.index, last.id)
	c.subs = c.subs[:len(c.subs)-1]
}
