package circuit

import "fmt"

// Operand is a scheme-defined operand type tag. The IR never interprets it;
// it only checks that gate port expectations and value types agree.
type Operand string

func (o Operand) String() string { return string(o) }

// AccessMode states how a consumer uses a value: a Borrow leaves the value
// available afterwards, a Move consumes it. Every value must end up with
// exactly one Move destination (enforced by the ownership reconciliation
// pass, not by the builder).
type AccessMode uint8

const (
	Borrow AccessMode = iota
	Move
)

func (m AccessMode) String() string {
	if m == Move {
		return "move"
	}
	return "borrow"
}

// Gate is the capability a gate descriptor must satisfy. Descriptors are
// opaque user data: the IR reads only arity, per-port types and access
// modes. Name is used in diagnostics only.
type Gate interface {
	Name() string
	InputCount() int
	OutputCount() int
	InputType(port int) (Operand, error)
	OutputType(port int) (Operand, error)
	AccessMode(port int) (AccessMode, error)
}

// PortError reports a gate descriptor queried outside its declared arity.
type PortError struct {
	Gate string
	Port int
}

func (e *PortError) Error() string {
	return fmt.Sprintf("gate %s has no port %d", e.Gate, e.Port)
}
