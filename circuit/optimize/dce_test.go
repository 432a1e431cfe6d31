package optimize_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
	"github.com/fhelium/fhelium/circuit/optimize"
	"github.com/fhelium/fhelium/gates"
)

// shape is an id-free projection of a subcircuit, comparable across rebuilds
// that remap every key.
type shape struct {
	Inputs  int
	Clones  int
	Drops   int
	Outputs int
	Gates   []string
}

func shapeOf(sc *circuit.Subcircuit) shape {
	var s shape
	for range sc.Inputs() {
		s.Inputs++
	}
	for range sc.Clones() {
		s.Clones++
	}
	for range sc.Drops() {
		s.Drops++
	}
	for range sc.Outputs() {
		s.Outputs++
	}
	for _, g := range sc.Gates() {
		s.Gates = append(s.Gates, g.Gate.Name())
	}
	sort.Strings(s.Gates)
	return s
}

func TestDCERemovesDeadChain(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()

	_, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, ys, err := sc.AddGate(gates.Neg(gates.Cipher), x)
	require.NoError(t, err)
	_, err = sc.AddOutput(ys[0])
	require.NoError(t, err)

	// dead: input feeding a gate whose result goes nowhere
	_, dx, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, _, err = sc.AddGate(gates.Not(gates.Cipher), dx)
	require.NoError(t, err)

	require.NoError(t, optimize.Apply(c, analysis.NewAnalyzer(), optimize.EliminateDeadCode{}))

	rebuilt, err := c.Subcircuit(sc.ID())
	require.NoError(t, err)
	want := shape{Inputs: 1, Outputs: 1, Gates: []string{"neg"}}
	assert.Empty(t, cmp.Diff(want, shapeOf(rebuilt)))

	r, err := analysis.Get(analysis.NewAnalyzer(), c, analysis.Reachability{})
	require.NoError(t, err)
	assert.True(t, r.Sub[rebuilt.ID()].AllReachable)
}

func TestDCEKeepsDropOnLiveValue(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()

	_, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	borrowNeg := gates.New("neg", []gates.Port{{Type: gates.Cipher, Mode: circuit.Borrow}}, []circuit.Operand{gates.Cipher})
	_, ys, err := sc.AddGate(borrowNeg, x)
	require.NoError(t, err)
	_, err = sc.AddOutput(ys[0])
	require.NoError(t, err)

	a := analysis.NewAnalyzer()
	require.NoError(t, optimize.Apply(c, a,
		optimize.ReconcileOwnership{}, optimize.EliminateDeadCode{}))

	// the drop inserted by reconciliation must survive elimination
	rebuilt, err := c.Subcircuit(sc.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, shapeOf(rebuilt).Drops)
	assertOwnershipClean(t, c)
}

// A value can keep its borrowing consumer but lose its only moving one to
// elimination: here the add borrows v into a live output while a dead neg
// holds v's single Move. The rebuild must give v a fresh Drop, or the
// pipeline would end with a leak it just reconciled away.
func TestDCERedropsValueAfterDeadMoveConsumer(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()

	_, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, v, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, sums, err := sc.AddGate(gates.Add(gates.Cipher), x, v) // borrows v
	require.NoError(t, err)
	_, err = sc.AddOutput(sums[0])
	require.NoError(t, err)
	_, _, err = sc.AddGate(gates.Neg(gates.Cipher), v) // moves v, result unused
	require.NoError(t, err)

	require.NoError(t, optimize.Apply(c, analysis.NewAnalyzer(), optimize.Default()...))

	rebuilt, err := c.Subcircuit(sc.ID())
	require.NoError(t, err)
	want := shape{Inputs: 2, Drops: 1, Outputs: 1, Gates: []string{"add"}}
	assert.Empty(t, cmp.Diff(want, shapeOf(rebuilt)))
	assertOwnershipClean(t, c)
}

func TestDCEIdempotent(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, ys, err := sc.AddGate(gates.Neg(gates.Cipher), x)
	require.NoError(t, err)
	_, err = sc.AddOutput(ys[0])
	require.NoError(t, err)
	_, dx, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, err = sc.AddDrop(dx)
	require.NoError(t, err)

	require.NoError(t, optimize.Apply(c, analysis.NewAnalyzer(), optimize.EliminateDeadCode{}))
	first, err := c.Subcircuit(sc.ID())
	require.NoError(t, err)
	after1 := shapeOf(first)

	require.NoError(t, optimize.Apply(c, analysis.NewAnalyzer(), optimize.EliminateDeadCode{}))
	second, err := c.Subcircuit(sc.ID())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(after1, shapeOf(second)))
}

func TestDCENoOpPreservesCache(t *testing.T) {
	c := circuit.New()
	sc := c.NewSubcircuit()
	_, x, err := sc.AddInput(gates.Cipher)
	require.NoError(t, err)
	_, ys, err := sc.AddGate(gates.Neg(gates.Cipher), x)
	require.NoError(t, err)
	_, err = sc.AddOutput(ys[0])
	require.NoError(t, err)

	a := analysis.NewAnalyzer()
	_, err = analysis.Get(a, c, analysis.Order{})
	require.NoError(t, err)

	require.NoError(t, optimize.Apply(c, a, optimize.EliminateDeadCode{}))
	assert.Contains(t, a.Cached(), string(analysis.KeyOrder))
}
