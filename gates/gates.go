// Package gates provides a small structural gate vocabulary for building
// circuits: arity, per-port operand types and access modes. The arithmetic
// and cryptographic semantics of a gate live in the scheme backends, not
// here — the IR only ever reads the structure.
package gates

import "github.com/fhelium/fhelium/circuit"

// Common operand types. Schemes are free to define their own.
const (
	Bit    circuit.Operand = "bit"
	Int    circuit.Operand = "int"
	Cipher circuit.Operand = "cipher"
)

// Port declares one gate input: its expected operand type and whether the
// gate borrows or consumes the value.
type Port struct {
	Type circuit.Operand
	Mode circuit.AccessMode
}

// Descriptor is a plain-data implementation of circuit.Gate.
type Descriptor struct {
	name string
	ins  []Port
	outs []circuit.Operand
}

// New builds a gate descriptor from its port declarations.
func New(name string, ins []Port, outs []circuit.Operand) *Descriptor {
	return &Descriptor{name: name, ins: ins, outs: outs}
}

func (d *Descriptor) Name() string     { return d.name }
func (d *Descriptor) InputCount() int  { return len(d.ins) }
func (d *Descriptor) OutputCount() int { return len(d.outs) }

func (d *Descriptor) InputType(port int) (circuit.Operand, error) {
	if port < 0 || port >= len(d.ins) {
		return "", &circuit.PortError{Gate: d.name, Port: port}
	}
	return d.ins[port].Type, nil
}

func (d *Descriptor) OutputType(port int) (circuit.Operand, error) {
	if port < 0 || port >= len(d.outs) {
		return "", &circuit.PortError{Gate: d.name, Port: port}
	}
	return d.outs[port], nil
}

func (d *Descriptor) AccessMode(port int) (circuit.AccessMode, error) {
	if port < 0 || port >= len(d.ins) {
		return circuit.Borrow, &circuit.PortError{Gate: d.name, Port: port}
	}
	return d.ins[port].Mode, nil
}

// Unary gates consume their operand: the typical HE backend rewrites the
// ciphertext in place.

func Not(t circuit.Operand) *Descriptor {
	return New("not", []Port{{Type: t, Mode: circuit.Move}}, []circuit.Operand{t})
}

func Neg(t circuit.Operand) *Descriptor {
	return New("neg", []Port{{Type: t, Mode: circuit.Move}}, []circuit.Operand{t})
}

// Binary gates accumulate into their first operand and borrow the second.

func Add(t circuit.Operand) *Descriptor {
	return binary("add", t)
}

func Mul(t circuit.Operand) *Descriptor {
	return binary("mul", t)
}

func And() *Descriptor { return binary("and", Bit) }
func Or() *Descriptor  { return binary("or", Bit) }
func Xor() *Descriptor { return binary("xor", Bit) }

func binary(name string, t circuit.Operand) *Descriptor {
	return New(name, []Port{
		{Type: t, Mode: circuit.Move},
		{Type: t, Mode: circuit.Borrow},
	}, []circuit.Operand{t})
}
