package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
	"github.com/fhelium/fhelium/gates"
)

func TestOrderChain(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, ops := addChain(t, sc)

	r, err := analysis.Get(analysis.NewAnalyzer(), c, analysis.Order{})
	require.NoError(t, err)

	sub := r.Sub[sc.ID()]
	require.Equal(t, ops, sub.Ops)
	assert.Equal(t, 0, sub.Pos[ops[0]])
	assert.Equal(t, 1, sub.Pos[ops[1]])
	assert.Equal(t, 2, sub.Pos[ops[2]])
}

// Two independent chains: the priority queue interleaves them so each value
// dies as soon as possible, instead of running both inputs first.
func TestOrderPrioritizesConsumers(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, first := addChain(t, sc)
	_, second := addChain(t, sc)

	r, err := analysis.Get(analysis.NewAnalyzer(), c, analysis.Order{})
	require.NoError(t, err)

	sub := r.Sub[sc.ID()]
	want := []circuit.OperationID{
		first[0],  // input 1 (low, seq wins)
		first[1],  // its gate becomes ready: normal beats the waiting input
		first[2],  // output: high
		second[0], // only then the second chain
		second[1],
		second[2],
	}
	assert.Equal(t, want, sub.Ops)
}

func TestOrderTopological(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, y, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, sums, err := sc.AddGate(gates.Add(gates.Cipher), x, y)
	require.NoError(t, err)
	_, err = sc.AddOutput(sums[0])
	require.NoError(t, err)
	_, err = sc.AddDrop(y)
	require.NoError(t, err)

	r, err := analysis.Get(analysis.NewAnalyzer(), c, analysis.Order{})
	require.NoError(t, err)

	// every operation scheduled exactly once, producers before consumers
	sub := r.Sub[sc.ID()]
	require.Len(t, sub.Ops, sc.NbOperations())
	for _, op := range sub.Ops {
		consumed, err := sc.Consumed(op)
		require.NoError(t, err)
		for _, v := range consumed {
			val, ok := sc.Value(v)
			require.True(t, ok)
			assert.Less(t, sub.Pos[val.Origin.Op], sub.Pos[op],
				"%v must run after its producer %v", op, val.Origin.Op)
		}
	}
}
