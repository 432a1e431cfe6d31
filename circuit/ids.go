package circuit

import (
	"fmt"

	"github.com/fhelium/fhelium/store"
)

// SubcircuitID identifies a Subcircuit within its Circuit.
type SubcircuitID uint32

// OperationKind discriminates the five operation kinds.
type OperationKind uint8

const (
	KindInput OperationKind = iota
	KindGate
	KindClone
	KindDrop
	KindOutput
)

func (k OperationKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindGate:
		return "gate"
	case KindClone:
		return "clone"
	case KindDrop:
		return "drop"
	case KindOutput:
		return "output"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// OperationID is the kind-erased handle of any operation. Handles are scoped
// to their owning subcircuit: using one against another subcircuit is a
// validation error, never undefined behavior.
type OperationID struct {
	Subcircuit SubcircuitID
	Kind       OperationKind
	Key        store.Key
}

func (id OperationID) String() string {
	return fmt.Sprintf("%s[%d/%v]", id.Kind, id.Subcircuit, id.Key)
}

// ValueID identifies a value within a subcircuit.
type ValueID struct {
	Subcircuit SubcircuitID
	Key        store.Key
}

func (id ValueID) String() string { return fmt.Sprintf("value[%d/%v]", id.Subcircuit, id.Key) }

// Typed operation handles. Each converts to the erased form with Op().
type (
	InputID  struct{ id OperationID }
	GateID   struct{ id OperationID }
	CloneID  struct{ id OperationID }
	DropID   struct{ id OperationID }
	OutputID struct{ id OperationID }
)

func (i InputID) Op() OperationID  { return i.id }
func (i GateID) Op() OperationID   { return i.id }
func (i CloneID) Op() OperationID  { return i.id }
func (i DropID) Op() OperationID   { return i.id }
func (i OutputID) Op() OperationID { return i.id }

// AsInput narrows an erased handle back to a typed one.
func (id OperationID) AsInput() (InputID, bool)   { return InputID{id}, id.Kind == KindInput }
func (id OperationID) AsGate() (GateID, bool)     { return GateID{id}, id.Kind == KindGate }
func (id OperationID) AsClone() (CloneID, bool)   { return CloneID{id}, id.Kind == KindClone }
func (id OperationID) AsDrop() (DropID, bool)     { return DropID{id}, id.Kind == KindDrop }
func (id OperationID) AsOutput() (OutputID, bool) { return OutputID{id}, id.Kind == KindOutput }

func (i InputID) String() string  { return i.id.String() }
func (i GateID) String() string   { return i.id.String() }
func (i CloneID) String() string  { return i.id.String() }
func (i DropID) String() string   { return i.id.String() }
func (i OutputID) String() string { return i.id.String() }

func inputID(sub SubcircuitID, k store.Key) InputID {
	return InputID{OperationID{Subcircuit: sub, Kind: KindInput, Key: k}}
}
func gateID(sub SubcircuitID, k store.Key) GateID {
	return GateID{OperationID{Subcircuit: sub, Kind: KindGate, Key: k}}
}
func cloneID(sub SubcircuitID, k store.Key) CloneID {
	return CloneID{OperationID{Subcircuit: sub, Kind: KindClone, Key: k}}
}
func dropID(sub SubcircuitID, k store.Key) DropID {
	return DropID{OperationID{Subcircuit: sub, Kind: KindDrop, Key: k}}
}
func outputID(sub SubcircuitID, k store.Key) OutputID {
	return OutputID{OperationID{Subcircuit: sub, Kind: KindOutput, Key: k}}
}
