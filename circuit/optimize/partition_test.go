package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
	"github.com/fhelium/fhelium/circuit/optimize"
	"github.com/fhelium/fhelium/gates"
)

func addIsland(t *testing.T, sc *circuit.Subcircuit, nbGates int) {
	t.Helper()
	_, v, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	for range nbGates {
		_, ys, err := sc.AddGate(gates.Neg(gates.Cipher), v)
		require.NoError(t, err)
		v = ys[0]
	}
	_, err = sc.AddOutput(v)
	require.NoError(t, err)
}

func TestPartitionTwoIslands(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	addIsland(t, sc, 1)
	addIsland(t, sc, 1)

	a := analysis.NewAnalyzer()
	require.NoError(t, optimize.Apply(c, a, optimize.PartitionSubcircuits{}))

	subs := c.Subcircuits()
	require.Len(t, subs, 2)

	comps, err := analysis.Get(a, c, analysis.Components{})
	require.NoError(t, err)
	valid, err := analysis.Get(a, c, analysis.Validity{})
	require.NoError(t, err)
	for _, sub := range subs {
		assert.Equal(t, 1, comps.Sub[sub.ID()].Count)
		assert.Equal(t, 3, sub.NbOperations())
	}
	assert.True(t, valid.AllValid())
}

func TestPartitionKeepsLargestComponent(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	addIsland(t, sc, 1) // 3 operations
	addIsland(t, sc, 3) // 5 operations: stays put

	require.NoError(t, optimize.Apply(c, analysis.NewAnalyzer(), optimize.PartitionSubcircuits{}))

	original, err := c.Subcircuit(sc.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, original.NbOperations())

	subs := c.Subcircuits()
	require.Len(t, subs, 2)
	for _, sub := range subs {
		if sub.ID() != sc.ID() {
			assert.Equal(t, 3, sub.NbOperations())
		}
	}
}

func TestPartitionSingleComponentIsNoOp(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	addIsland(t, sc, 2)

	a := analysis.NewAnalyzer()
	_, err := analysis.Get(a, c, analysis.Order{})
	require.NoError(t, err)

	require.NoError(t, optimize.Apply(c, a, optimize.PartitionSubcircuits{}))
	assert.Len(t, c.Subcircuits(), 1)
	assert.Contains(t, a.Cached(), string(analysis.KeyOrder))
}

func TestDefaultPipeline(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()

	// island 1: leaked borrow operand, dead gate hanging off it
	_, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	borrowNeg := gates.New("neg", []gates.Port{{Type: gates.Cipher, Mode: circuit.Borrow}}, []circuit.Operand{gates.Cipher})
	_, ys, err := sc.AddGate(borrowNeg, x)
	require.NoError(t, err)
	_, err = sc.AddOutput(ys[0])
	require.NoError(t, err)
	_, _, err = sc.AddGate(borrowNeg, ys[0]) // result unused: dead
	require.NoError(t, err)

	// island 2: overconsumed value
	_, z, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, zs, err := sc.AddGate(gates.Neg(gates.Cipher), z)
	require.NoError(t, err)
	_, err = sc.AddOutput(zs[0])
	require.NoError(t, err)
	_, err = sc.AddOutput(zs[0])
	require.NoError(t, err)

	a := analysis.NewAnalyzer()
	require.NoError(t, optimize.Apply(c, a, optimize.Default()...))

	assertOwnershipClean(t, c)
	reach, err := analysis.Get(a, c, analysis.Reachability{})
	require.NoError(t, err)
	comps, err := analysis.Get(a, c, analysis.Components{})
	require.NoError(t, err)
	require.Len(t, c.Subcircuits(), 2)
	for _, sub := range c.Subcircuits() {
		assert.True(t, reach.Sub[sub.ID()].AllReachable)
		assert.Equal(t, 1, comps.Sub[sub.ID()].Count)
	}
}
