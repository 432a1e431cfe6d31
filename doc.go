// Package fhelium provides the circuit intermediate representation and
// compilation pipeline for homomorphic-encryption schemes: a linear-SSA
// circuit model with explicit borrow/move ownership, a cached analysis
// framework, rewriting passes (ownership reconciliation, dead-code
// elimination, partitioning) and a scheduler lowering circuits into
// execution plans of wire-resolved steps.
//
// Typical flow:
//
//	c := circuit.New()
//	sc := c.NewSubcircuit()
//	_, x, _ := sc.AddInput(gates.Cipher)
//	_, ys, _ := sc.AddGate(gates.Neg(gates.Cipher), x)
//	sc.AddOutput(ys[0])
//
//	a := analysis.NewAnalyzer()
//	_ = optimize.Apply(c, a, optimize.Default()...)
//	plan, _ := schedule.Build(c, a)
package fhelium
