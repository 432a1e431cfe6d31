package circuit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValueNotFound is returned when a referenced value does not exist in
	// the subcircuit, including values addressed through stale keys.
	ErrValueNotFound = errors.New("value not found")

	// ErrOperationNotFound is returned when a referenced operation does not
	// exist in the subcircuit.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrSubcircuitNotFound is returned when a circuit has no subcircuit with
	// the given id.
	ErrSubcircuitNotFound = errors.New("subcircuit not found")

	// ErrSubcircuitMismatch is returned when a handle owned by one subcircuit
	// is used to mutate another.
	ErrSubcircuitMismatch = errors.New("subcircuit id mismatch")

	// ErrZeroClone is returned by AddClone when zero outputs are requested.
	ErrZeroClone = errors.New("clone must produce at least one value")

	// ErrDestinationNotFound is returned by rewiring when the destination to
	// replace is not recorded on the source value.
	ErrDestinationNotFound = errors.New("destination not found")

	// ErrInternal tags invariant violations: conditions that are unreachable
	// on valid input and indicate a bug in this package or its callers'
	// analysis results. They are surfaced as errors so callers can report
	// rather than crash.
	ErrInternal = errors.New("internal invariant violation")
)

// ArityError reports a gate connected with the wrong number of inputs.
type ArityError struct {
	Gate string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("gate %s: expected %d inputs, got %d", e.Gate, e.Want, e.Got)
}

// TypeMismatchError reports an input value whose operand type diverges from
// the gate's declared port type. Detected before the gate is inserted.
type TypeMismatchError struct {
	Gate string
	Port int
	Want Operand
	Got  Operand
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("gate %s: input port %d expects %s, got %s", e.Gate, e.Port, e.Want, e.Got)
}

// IncompleteExtractionError reports a Split whose operation set does not form
// a closed connected component: the listed operations never became ready
// (a dependency or a consumer lies outside the set). The source subcircuit is
// left unmodified.
type IncompleteExtractionError struct {
	Remaining []OperationID
}

func (e *IncompleteExtractionError) Error() string {
	var sbb strings.Builder
	sbb.WriteString("extraction set is not a closed component; stuck operations: ")
	for i, op := range e.Remaining {
		if i > 0 {
			sbb.WriteString(", ")
		}
		sbb.WriteString(op.String())
	}
	return sbb.String()
}
