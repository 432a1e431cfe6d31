package analysis

import "github.com/fhelium/fhelium/circuit"

// Ownership classifies every value by its count of Move destinations. The
// linear-SSA invariant wants exactly one; zero is a leak, more than one is
// an overconsumption. Both are repaired by the reconcile-ownership pass.
type Ownership struct{}

func (Ownership) AnalysisKey() Key { return KeyOwnership }

type IssueKind uint8

const (
	Leaked IssueKind = iota
	Overconsumed
)

func (k IssueKind) String() string {
	if k == Leaked {
		return "leaked"
	}
	return "overconsumed"
}

// Issue describes one ownership violation. Moves is the observed count of
// Move destinations: 0 for Leaked, >1 for Overconsumed.
type Issue struct {
	Kind  IssueKind
	Moves int
}

type OwnershipResult struct {
	Sub map[circuit.SubcircuitID]map[circuit.ValueID]Issue
}

// HasIssues reports whether any value anywhere violates the invariant.
func (r *OwnershipResult) HasIssues() bool {
	for _, issues := range r.Sub {
		if len(issues) > 0 {
			return true
		}
	}
	return false
}

func (Ownership) Run(_ *Analyzer, c *circuit.Circuit) (*OwnershipResult, error) {
	res := &OwnershipResult{Sub: make(map[circuit.SubcircuitID]map[circuit.ValueID]Issue)}
	for _, sc := range c.Subcircuits() {
		issues := make(map[circuit.ValueID]Issue)
		for id, v := range sc.Values() {
			switch n := v.MoveCount(); {
			case n == 0:
				issues[id] = Issue{Kind: Leaked}
			case n > 1:
				issues[id] = Issue{Kind: Overconsumed, Moves: n}
			}
		}
		res.Sub[sc.ID()] = issues
	}
	return res, nil
}
