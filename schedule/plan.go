// Package schedule lowers an optimized circuit into an execution plan:
// independent partitions, each a sequence of layers of steps over resolved
// wire bindings. Partitions are free of mutual data dependency by
// construction and may be executed concurrently by the runtime; layers
// within a partition are sequential.
package schedule

import "github.com/fhelium/fhelium/circuit"

// Wire is a storage slot number local to a partition. One wire may hold
// several values over the partition's lifetime, as long as their live ranges
// don't genuinely conflict.
type Wire int

// Step applies one gate: read Inputs, write Output. For gates producing
// several values, one Step is emitted per output port (Port tells which);
// the steps of one gate always share a layer.
type Step struct {
	Gate   circuit.Gate
	Inputs []Wire
	Output Wire
	Port   int
}

// Layer is a group of steps with no dependency among them. The current
// scheduler emits the steps of a single operation per layer; the structure
// anticipates packing independent steps of several operations together.
type Layer struct {
	Steps []Step
}

// Partition is an independently executable unit: the lowering of one
// single-component subcircuit.
type Partition struct {
	Layers []Layer

	// MemorySize is the number of wires the partition needs (peak).
	MemorySize int

	// InputBindings and OutputBindings tie external operation ids to local
	// wires: the runtime writes inputs before the first layer and reads
	// outputs after the last.
	InputBindings  map[circuit.InputID]Wire
	OutputBindings map[circuit.OutputID]Wire
}

// ExecutionPlan is the final product of the pipeline.
type ExecutionPlan struct {
	Partitions []Partition
}

// copyGate is the pseudo-gate emitted for Clone operations: it reads one
// wire and duplicates it onto another. The runtime recognizes it by IsCopy.
type copyGate struct {
	typ circuit.Operand
}

func (g copyGate) Name() string     { return "copy" }
func (g copyGate) InputCount() int  { return 1 }
func (g copyGate) OutputCount() int { return 1 }

func (g copyGate) InputType(port int) (circuit.Operand, error) {
	if port != 0 {
		return "", &circuit.PortError{Gate: g.Name(), Port: port}
	}
	return g.typ, nil
}

func (g copyGate) OutputType(port int) (circuit.Operand, error) {
	if port != 0 {
		return "", &circuit.PortError{Gate: g.Name(), Port: port}
	}
	return g.typ, nil
}

func (g copyGate) AccessMode(port int) (circuit.AccessMode, error) {
	if port != 0 {
		return circuit.Borrow, &circuit.PortError{Gate: g.Name(), Port: port}
	}
	return circuit.Borrow, nil
}

// IsCopy reports whether a step's gate is the wire-duplication pseudo-gate.
func IsCopy(g circuit.Gate) bool {
	_, ok := g.(copyGate)
	return ok
}
