package analysis

import "github.com/fhelium/fhelium/circuit"

// Validity classifies every connected component: a component is valid iff it
// contains at least one Input, one Gate and one Output. Invalid components
// are candidates for dead-code elimination or an invalid-subgraph diagnostic.
type Validity struct{}

func (Validity) AnalysisKey() Key { return KeyValidity }

type ValidityResult struct {
	Sub map[circuit.SubcircuitID][]ComponentStatus
}

// ComponentStatus counts the anchoring operation kinds of one component.
type ComponentStatus struct {
	Inputs  int
	Gates   int
	Outputs int
}

func (s ComponentStatus) Valid() bool {
	return s.Inputs > 0 && s.Gates > 0 && s.Outputs > 0
}

// AllValid reports whether every component of every subcircuit is valid.
func (r *ValidityResult) AllValid() bool {
	for _, statuses := range r.Sub {
		for _, s := range statuses {
			if !s.Valid() {
				return false
			}
		}
	}
	return true
}

func (Validity) Run(a *Analyzer, c *circuit.Circuit) (*ValidityResult, error) {
	comps, err := Get(a, c, Components{})
	if err != nil {
		return nil, err
	}

	res := &ValidityResult{Sub: make(map[circuit.SubcircuitID][]ComponentStatus)}
	for _, sc := range c.Subcircuits() {
		sub := comps.Sub[sc.ID()]
		statuses := make([]ComponentStatus, sub.Count)
		for op, comp := range sub.Of {
			switch op.Kind {
			case circuit.KindInput:
				statuses[comp].Inputs++
			case circuit.KindGate:
				statuses[comp].Gates++
			case circuit.KindOutput:
				statuses[comp].Outputs++
			}
		}
		res.Sub[sc.ID()] = statuses
	}
	return res, nil
}
