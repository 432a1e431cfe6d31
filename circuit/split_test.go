package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/gates"
)

// twoIslands builds a subcircuit holding two independent chains and returns
// the operation ids of the second one.
func twoIslands(t *testing.T) (*circuit.Circuit, circuit.SubcircuitID, []circuit.OperationID) {
	t.Helper()
	c := circuit.New()
	sc := c.NewSubcircuit()

	_, a, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, as, err := sc.AddGate(gates.Neg(gates.Cipher), a)
	require.NoError(t, err)
	_, err = sc.AddOutput(as[0])
	require.NoError(t, err)

	in2, b, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	g2, bs, err := sc.AddGate(gates.Not(gates.Cipher), b)
	require.NoError(t, err)
	out2, err := sc.AddOutput(bs[0])
	require.NoError(t, err)

	return c, sc.ID(), []circuit.OperationID{in2.Op(), g2.Op(), out2.Op()}
}

func TestSplitIsland(t *testing.T) {
	c, srcID, island := twoIslands(t)

	dstID, err := c.Split(srcID, island)
	require.NoError(t, err)
	require.Len(t, c.Subcircuits(), 2)

	src, err := c.Subcircuit(srcID)
	require.NoError(t, err)
	dst, err := c.Subcircuit(dstID)
	require.NoError(t, err)

	assert.Equal(t, 3, src.NbOperations())
	assert.Equal(t, 3, dst.NbOperations())
	for _, op := range island {
		assert.False(t, src.Contains(op), "%v must have left the source", op)
	}

	// the extracted chain is intact: input value feeds the gate, gate
	// output feeds the output op
	nbGates := 0
	for id, g := range dst.Gates() {
		nbGates++
		assert.Equal(t, "not", g.Gate.Name())
		in, ok := dst.Value(g.Ins[0])
		require.True(t, ok)
		assert.Equal(t, circuit.KindInput, in.Origin.Op.Kind)
		out, ok := dst.Value(g.Outs[0])
		require.True(t, ok)
		assert.Equal(t, id.Op(), out.Origin.Op)
	}
	assert.Equal(t, 1, nbGates)
}

func TestSplitIncompleteSet(t *testing.T) {
	c, srcID, island := twoIslands(t)

	// drop the gate from the set: the input's consumer is now outside
	partial := []circuit.OperationID{island[0], island[2]}
	_, err := c.Split(srcID, partial)
	var incomplete *circuit.IncompleteExtractionError
	require.ErrorAs(t, err, &incomplete)
	assert.NotEmpty(t, incomplete.Remaining)

	// source untouched, no subcircuit created
	assert.Len(t, c.Subcircuits(), 1)
	src, err := c.Subcircuit(srcID)
	require.NoError(t, err)
	assert.Equal(t, 6, src.NbOperations())
}

func TestSplitForeignOperation(t *testing.T) {
	c, srcID, _ := twoIslands(t)
	other := c.NewSubcircuit()
	in, _, err := other.AddInput(gates.Bit)
	require.NoError(t, err)

	_, err = c.Split(srcID, []circuit.OperationID{in.Op()})
	assert.ErrorIs(t, err, circuit.ErrSubcircuitMismatch)
}

func TestCopyInto(t *testing.T) {
	c, srcID, island := twoIslands(t)
	src, err := c.Subcircuit(srcID)
	require.NoError(t, err)

	dst := c.NewSubcircuit()
	remap, err := src.CopyInto(dst, island)
	require.NoError(t, err)

	// copy leaves the source alone
	assert.Equal(t, 6, src.NbOperations())
	assert.Equal(t, 3, dst.NbOperations())
	assert.Len(t, remap, 2)
	for from, to := range remap {
		assert.Equal(t, srcID, from.Subcircuit)
		assert.Equal(t, dst.ID(), to.Subcircuit)
		fv, ok := src.Value(from)
		require.True(t, ok)
		tv, ok := dst.Value(to)
		require.True(t, ok)
		assert.Equal(t, fv.Type, tv.Type)
	}
}
