package analysis

import (
	"fmt"
	"strings"

	"github.com/fhelium/fhelium/circuit"
)

// CycleError reports a scheduling attempt on a cyclic dependency graph. It
// carries the operations that never became ready.
type CycleError struct {
	Subcircuit circuit.SubcircuitID
	Remaining  []circuit.OperationID
}

func (e *CycleError) Error() string {
	var sbb strings.Builder
	fmt.Fprintf(&sbb, "cycle detected in subcircuit %d; unscheduled operations: ", e.Subcircuit)
	for i, op := range e.Remaining {
		if i > 0 {
			sbb.WriteString(", ")
		}
		sbb.WriteString(op.String())
	}
	return sbb.String()
}

func errValue(v circuit.ValueID) error {
	return fmt.Errorf("%w: %v", circuit.ErrValueNotFound, v)
}
