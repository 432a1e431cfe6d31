package circuit

// The five operation kinds. Each record stores the ids of the values it
// consumes and produces; the values themselves link back through Origin and
// Destinations. seq is a per-subcircuit insertion counter used for
// deterministic iteration and scheduling tie-breaks.

// InputOp represents an external circuit input. It consumes nothing and
// produces one value on port 0.
type InputOp struct {
	Out ValueID
	seq uint32
}

// GateOp applies a user gate descriptor to N consumed values, producing M.
type GateOp struct {
	Gate Gate
	Ins  []ValueID
	Outs []ValueID
	seq  uint32
}

// CloneOp borrows one value and produces K copies of it. It exists purely to
// let one logical value serve several Move consumers.
type CloneOp struct {
	In   ValueID
	Outs []ValueID
	seq  uint32
}

// DropOp moves one value and produces nothing. It exists purely to give an
// otherwise-unconsumed value its single Move consumer.
type DropOp struct {
	In  ValueID
	seq uint32
}

// OutputOp moves one value out of the circuit as an external output.
type OutputOp struct {
	In  ValueID
	seq uint32
}
