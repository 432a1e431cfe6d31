// Package optimize implements the rewriting passes that bring a circuit into
// schedulable shape: ownership reconciliation, dead-code elimination and
// subcircuit partitioning.
//
// Each pass reports which analyses it left valid; Apply invalidates the rest
// of the analyzer cache after every pass. The report is a manual contract —
// a pass that rewrites the circuit but claims to preserve an analysis
// produces stale results — verified by tests, not by the type system.
package optimize

import (
	"fmt"
	"time"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
	"github.com/fhelium/fhelium/logger"
)

// Preserved is a pass's claim about which cached analyses survived it.
type Preserved struct {
	keys []analysis.Key
	all  bool
}

// PreserveAll claims the pass did not change the circuit at all.
func PreserveAll() Preserved { return Preserved{all: true} }

// PreserveNone claims nothing: every cached analysis is dropped.
func PreserveNone() Preserved { return Preserved{} }

// Preserve claims exactly the given analyses survived.
func Preserve(keys ...analysis.Key) Preserved { return Preserved{keys: keys} }

// Pass is a circuit rewrite. Run mutates the circuit through the builder and
// rewrite API and returns its preservation claim.
type Pass interface {
	Name() string
	Run(c *circuit.Circuit, a *analysis.Analyzer) (Preserved, error)
}

// Apply runs the passes in order, invalidating the analyzer cache after each
// according to its claim. The first failure stops the pipeline.
func Apply(c *circuit.Circuit, a *analysis.Analyzer, passes ...Pass) error {
	log := logger.Logger()
	for _, p := range passes {
		start := time.Now()
		preserved, err := p.Run(c, a)
		if err != nil {
			return fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		if !preserved.all {
			a.InvalidateExcept(preserved.keys...)
		}
		log.Debug().
			Str("pass", p.Name()).
			Dur("took", time.Since(start)).
			Str("cached", a.Cached()).
			Msg("optimizer pass done")
	}
	return nil
}

// Default returns the standard pipeline: reconcile ownership, eliminate dead
// code, partition disjoint components.
func Default() []Pass {
	return []Pass{ReconcileOwnership{}, EliminateDeadCode{}, PartitionSubcircuits{}}
}
