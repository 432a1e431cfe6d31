package circuit

// Origin records where a value comes from: the producing operation and the
// output port it left through.
type Origin struct {
	Op   OperationID
	Port int
}

// Destination records one consumer of a value: the consuming operation, the
// input port the value enters through, and the access mode declared by that
// consumer.
type Destination struct {
	Op   OperationID
	Port int
	Mode AccessMode
}

// Value is a single-assignment value: produced exactly once at Origin,
// consumed by Destinations. Before ownership reconciliation a value may have
// zero or several Move destinations; afterwards, exactly one.
type Value struct {
	Type         Operand
	Origin       Origin
	Destinations []Destination
}

// MoveCount returns the number of Move destinations recorded on v.
func (v *Value) MoveCount() int {
	n := 0
	for _, d := range v.Destinations {
		if d.Mode == Move {
			n++
		}
	}
	return n
}
