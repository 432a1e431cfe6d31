package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/gates"
)

func TestBuildChain(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()

	in, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)

	g, ys, err := sc.AddGate(gates.Neg(gates.Cipher), x)
	require.NoError(t, err)
	require.Len(t, ys, 1)

	out, err := sc.AddOutput(ys[0])
	require.NoError(t, err)

	// origins and destinations link up
	xv, ok := sc.Value(x)
	require.True(t, ok)
	assert.Equal(t, in.Op(), xv.Origin.Op)
	assert.Equal(t, 0, xv.Origin.Port)
	require.Len(t, xv.Destinations, 1)
	assert.Equal(t, circuit.Destination{Op: g.Op(), Port: 0, Mode: circuit.Move}, xv.Destinations[0])

	yv, ok := sc.Value(ys[0])
	require.True(t, ok)
	assert.Equal(t, g.Op(), yv.Origin.Op)
	require.Len(t, yv.Destinations, 1)
	assert.Equal(t, circuit.Destination{Op: out.Op(), Port: 0, Mode: circuit.Move}, yv.Destinations[0])

	assert.Equal(t, 3, sc.NbOperations())
	assert.Equal(t, 2, sc.NbValues())
}

func TestBorrowMode(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()

	_, x, _ := sc.AddInput(gates.Cipher)
	_, y, _ := sc.AddInput(gates.Cipher)
	g, _, err := sc.AddGate(gates.Add(gates.Cipher), x, y)
	require.NoError(t, err)

	xv, _ := sc.Value(x)
	yv, _ := sc.Value(y)
	assert.Equal(t, circuit.Move, xv.Destinations[0].Mode, "add consumes its first operand")
	assert.Equal(t, circuit.Borrow, yv.Destinations[0].Mode, "add borrows its second operand")
	assert.Equal(t, g.Op(), yv.Destinations[0].Op)
}

func TestAddGateArityError(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, _ := sc.AddInput(gates.Bit)

	_, _, err := sc.AddGate(gates.And(), x)
	var arity *circuit.ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, "and", arity.Gate)
	assert.Equal(t, 2, arity.Want)
	assert.Equal(t, 1, arity.Got)
	assert.Equal(t, 1, sc.NbOperations(), "failed gate must not be inserted")
}

func TestAddGateTypeMismatch(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, _ := sc.AddInput(gates.Bit)
	_, y, _ := sc.AddInput(gates.Cipher)

	_, _, err := sc.AddGate(gates.Add(gates.Cipher), x, y)
	var mismatch *circuit.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "add", mismatch.Gate)
	assert.Equal(t, 0, mismatch.Port)
	assert.Equal(t, gates.Cipher, mismatch.Want)
	assert.Equal(t, gates.Bit, mismatch.Got)

	// no mutation: gate absent, no destination recorded on either input
	assert.Equal(t, 2, sc.NbOperations())
	xv, _ := sc.Value(x)
	yv, _ := sc.Value(y)
	assert.Empty(t, xv.Destinations)
	assert.Empty(t, yv.Destinations)
}

func TestHandleScoping(t *testing.T) {
	c := circuit.New()
	sc1 := c.NewSubcircuit()
	sc2 := c.NewSubcircuit()
	_, x, _ := sc1.AddInput(gates.Cipher)

	_, _, err := sc2.AddGate(gates.Neg(gates.Cipher), x)
	assert.ErrorIs(t, err, circuit.ErrSubcircuitMismatch)

	_, err = sc2.AddOutput(x)
	assert.ErrorIs(t, err, circuit.ErrSubcircuitMismatch)
}

func TestUnknownValue(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()

	_, err := sc.AddDrop(circuit.ValueID{Subcircuit: sc.ID()})
	assert.ErrorIs(t, err, circuit.ErrValueNotFound)
}

func TestAddCloneZero(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, _ := sc.AddInput(gates.Cipher)

	_, _, err := sc.AddClone(x, 0)
	assert.ErrorIs(t, err, circuit.ErrZeroClone)
}

func TestAddClone(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, _ := sc.AddInput(gates.Cipher)

	cl, outs, err := sc.AddClone(x, 3)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	xv, _ := sc.Value(x)
	require.Len(t, xv.Destinations, 1)
	assert.Equal(t, circuit.Destination{Op: cl.Op(), Port: 0, Mode: circuit.Borrow}, xv.Destinations[0])
	for _, o := range outs {
		ov, ok := sc.Value(o)
		require.True(t, ok)
		assert.Equal(t, gates.Cipher, ov.Type, "clone outputs share the input's type")
		assert.Equal(t, cl.Op(), ov.Origin.Op)
	}
}

func TestRewireDestination(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, _ := sc.AddInput(gates.Cipher)
	out, err := sc.AddOutput(x)
	require.NoError(t, err)
	_, clones, _ := sc.AddClone(x, 1)

	dst := circuit.Destination{Op: out.Op(), Port: 0, Mode: circuit.Move}
	require.NoError(t, sc.RewireDestination(x, clones[0], dst))

	xv, _ := sc.Value(x)
	for _, d := range xv.Destinations {
		assert.NotEqual(t, dst, d, "move destination must have left the original value")
	}
	cv, _ := sc.Value(clones[0])
	require.Len(t, cv.Destinations, 1)
	assert.Equal(t, dst, cv.Destinations[0])

	op, ok := sc.Output(out)
	require.True(t, ok)
	assert.Equal(t, clones[0], op.In, "consumer must now read the clone output")
}

func TestOperationsInsertionOrder(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	in, x, _ := sc.AddInput(gates.Cipher)
	g, ys, _ := sc.AddGate(gates.Neg(gates.Cipher), x)
	out, _ := sc.AddOutput(ys[0])

	ops := sc.Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, in.Op(), ops[0])
	assert.Equal(t, g.Op(), ops[1])
	assert.Equal(t, out.Op(), ops[2])
}
