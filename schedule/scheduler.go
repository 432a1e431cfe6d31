package schedule

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fhelium/fhelium/circuit"
	"github.com/fhelium/fhelium/circuit/analysis"
	"github.com/fhelium/fhelium/logger"
)

type config struct {
	linearScan  bool
	concurrency int
}

// Option configures Build.
type Option func(*config) error

// WithLinearScan selects the per-type linear-scan wire allocator instead of
// the default interference-graph coloring.
func WithLinearScan() Option {
	return func(cfg *config) error {
		cfg.linearScan = true
		return nil
	}
}

// WithConcurrency caps the number of partitions lowered in parallel.
// Defaults to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be >= 1, got %d", n)
		}
		cfg.concurrency = n
		return nil
	}
}

// Build lowers an optimized circuit into an execution plan. The analyzer is
// reused, so analyses computed by the optimizer pipeline are not redone. Every
// subcircuit must be a partition — exactly one connected component; run the
// optimizer's partitioning pass first. Missing wire assignments or order
// entries are internal invariant violations, not user errors.
func Build(c *circuit.Circuit, a *analysis.Analyzer, opts ...Option) (*ExecutionPlan, error) {
	log := logger.Logger()
	start := time.Now()

	cfg := config{concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	// all analyses are computed up front on the single-owner analyzer; the
	// parallel lowering below only reads the results.
	comps, err := analysis.Get(a, c, analysis.Components{})
	if err != nil {
		return nil, err
	}
	sched, err := analysis.Get(a, c, analysis.Order{})
	if err != nil {
		return nil, err
	}
	var alloc *analysis.AllocationResult
	if cfg.linearScan {
		alloc, err = analysis.Get(a, c, analysis.LinearScan{})
	} else {
		alloc, err = analysis.Get(a, c, analysis.Registers{})
	}
	if err != nil {
		return nil, err
	}

	var targets []*circuit.Subcircuit
	for _, sc := range c.Subcircuits() {
		if sc.NbOperations() == 0 {
			continue
		}
		if n := comps.Sub[sc.ID()].Count; n != 1 {
			return nil, fmt.Errorf("%w: subcircuit %d has %d components; partition it first",
				circuit.ErrInternal, sc.ID(), n)
		}
		targets = append(targets, sc)
	}

	plan := &ExecutionPlan{Partitions: make([]Partition, len(targets))}
	var g errgroup.Group
	g.SetLimit(cfg.concurrency)
	for i, sc := range targets {
		g.Go(func() error {
			p, err := lowerPartition(sc, sched.Sub[sc.ID()], alloc.Sub[sc.ID()])
			if err != nil {
				return err
			}
			plan.Partitions[i] = *p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().
		Int("partitions", len(plan.Partitions)).
		Dur("took", time.Since(start)).
		Msg("execution plan built")
	return plan, nil
}

func lowerPartition(sc *circuit.Subcircuit, sched *analysis.SubSchedule, alloc *analysis.SubAllocation) (*Partition, error) {
	wireOf := func(v circuit.ValueID) (Wire, error) {
		reg, ok := alloc.Register[v]
		if !ok {
			return 0, fmt.Errorf("%w: value %v has no wire assignment", circuit.ErrInternal, v)
		}
		return Wire(reg), nil
	}

	p := &Partition{
		MemorySize:     alloc.Count,
		InputBindings:  make(map[circuit.InputID]Wire),
		OutputBindings: make(map[circuit.OutputID]Wire),
	}

	for id, op := range sc.Inputs() {
		w, err := wireOf(op.Out)
		if err != nil {
			return nil, err
		}
		p.InputBindings[id] = w
	}
	for id, op := range sc.Outputs() {
		w, err := wireOf(op.In)
		if err != nil {
			return nil, err
		}
		p.OutputBindings[id] = w
	}

	for _, opID := range sched.Ops {
		switch opID.Kind {
		case circuit.KindGate:
			gid, _ := opID.AsGate()
			op, ok := sc.Gate(gid)
			if !ok {
				return nil, fmt.Errorf("%w: %v", circuit.ErrOperationNotFound, opID)
			}
			ins := make([]Wire, len(op.Ins))
			for i, v := range op.Ins {
				w, err := wireOf(v)
				if err != nil {
					return nil, err
				}
				ins[i] = w
			}
			var layer Layer
			for port, out := range op.Outs {
				w, err := wireOf(out)
				if err != nil {
					return nil, err
				}
				layer.Steps = append(layer.Steps, Step{Gate: op.Gate, Inputs: ins, Output: w, Port: port})
			}
			p.Layers = append(p.Layers, layer)

		case circuit.KindClone:
			cid, _ := opID.AsClone()
			op, ok := sc.Clone(cid)
			if !ok {
				return nil, fmt.Errorf("%w: %v", circuit.ErrOperationNotFound, opID)
			}
			src, err := wireOf(op.In)
			if err != nil {
				return nil, err
			}
			val, ok := sc.Value(op.In)
			if !ok {
				return nil, fmt.Errorf("%w: %v", circuit.ErrValueNotFound, op.In)
			}
			// each copy is an independent single-output application
			var layer Layer
			for _, out := range op.Outs {
				w, err := wireOf(out)
				if err != nil {
					return nil, err
				}
				layer.Steps = append(layer.Steps, Step{
					Gate:   copyGate{typ: val.Type},
					Inputs: []Wire{src},
					Output: w,
				})
			}
			p.Layers = append(p.Layers, layer)

		case circuit.KindInput, circuit.KindOutput, circuit.KindDrop:
			// bindings cover inputs/outputs; drops free a wire implicitly
		}
	}
	return p, nil
}
