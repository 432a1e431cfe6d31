package analysis

import "github.com/fhelium/fhelium/circuit"

// Liveness computes each value's live range over the scheduled order: birth
// is its producer's position, death one past its last consumer's position
// (or birth+1 when nothing consumes it). Ranges are half-open [birth, death).
//
// Positions index every scheduled operation — inputs, drops and outputs
// included, matching the priority scheduler — not gates alone. On a
// gate-only axis the input value of an input→gate→output chain would live
// [0,1); here the same value spans [0,2).
type Liveness struct{}

func (Liveness) AnalysisKey() Key { return KeyLiveness }

// Range is a half-open interval of schedule positions.
type Range struct {
	Birth int
	Death int
}

func (r Range) Overlaps(o Range) bool {
	return r.Birth < o.Death && o.Birth < r.Death
}

type LivenessResult struct {
	Sub map[circuit.SubcircuitID]*SubLiveness
}

type SubLiveness struct {
	Ranges map[circuit.ValueID]Range

	// LastUses maps an operation to the values for which it is the final
	// scheduled consumer. The wire allocator reuses slots across these edges.
	LastUses map[circuit.OperationID][]circuit.ValueID
}

// LastUse reports whether op is the final scheduled consumer of v.
func (l *SubLiveness) LastUse(op circuit.OperationID, v circuit.ValueID) bool {
	for _, u := range l.LastUses[op] {
		if u == v {
			return true
		}
	}
	return false
}

func (Liveness) Run(a *Analyzer, c *circuit.Circuit) (*LivenessResult, error) {
	sched, err := Get(a, c, Order{})
	if err != nil {
		return nil, err
	}

	res := &LivenessResult{Sub: make(map[circuit.SubcircuitID]*SubLiveness)}
	for _, sc := range c.Subcircuits() {
		pos := sched.Sub[sc.ID()].Pos
		sub := &SubLiveness{
			Ranges:   make(map[circuit.ValueID]Range, sc.NbValues()),
			LastUses: make(map[circuit.OperationID][]circuit.ValueID),
		}

		for id, v := range sc.Values() {
			birth, ok := pos[v.Origin.Op]
			if !ok {
				return nil, errValue(id)
			}
			death := birth + 1
			var last circuit.OperationID
			hasConsumer := false
			for _, d := range v.Destinations {
				p, ok := pos[d.Op]
				if !ok {
					return nil, errValue(id)
				}
				if p+1 > death || !hasConsumer {
					death = p + 1
					last = d.Op
					hasConsumer = true
				}
			}
			sub.Ranges[id] = Range{Birth: birth, Death: death}
			if hasConsumer {
				sub.LastUses[last] = append(sub.LastUses[last], id)
			}
		}
		res.Sub[sc.ID()] = sub
	}
	return res, nil
}
