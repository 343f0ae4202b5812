package smear

import (
	"math"

	"github.com/eic-tools/detsmear/mc"
)

// Range is one inclusive acceptance window. Use math.Inf for an unbounded
// side.
type Range struct {
	Low, High float64
}

// Contains reports low <= v <= high.
func (r Range) Contains(v float64) bool { return v >= r.Low && v <= r.High }

// Zone is a combinable set of kinematic range cuts. A particle is in
// acceptance iff every configured range contains the corresponding true
// value; the zero Zone accepts unconditionally. Zones combine by logical
// AND only.
type Zone struct {
	ranges map[Dim]Range
}

// NewZone returns an unconstrained zone.
func NewZone() Zone { return Zone{} }

// With returns a copy of z whose acceptance additionally requires
// low <= dim <= high. Adding a second range on the same dimension tightens
// the existing one (AND semantics).
func (z Zone) With(d Dim, low, high float64) Zone {
	out := Zone{ranges: make(map[Dim]Range, len(z.ranges)+1)}
	for k, v := range z.ranges {
		out.ranges[k] = v
	}
	r := Range{Low: low, High: high}
	if prev, ok := out.ranges[d]; ok {
		r.Low = math.Max(prev.Low, r.Low)
		r.High = math.Min(prev.High, r.High)
	}
	out.ranges[d] = r
	return out
}

// Intersect returns the AND combination of z and other.
func (z Zone) Intersect(other Zone) Zone {
	out := z
	for d, r := range other.ranges {
		out = out.With(d, r.Low, r.High)
	}
	return out
}

// Contains evaluates the zone against the particle's true kinematics.
func (z Zone) Contains(p *mc.Particle) bool {
	if len(z.ranges) == 0 {
		return true
	}
	k := KinOf(p)
	for d, r := range z.ranges {
		if !r.Contains(k.Value(d)) {
			return false
		}
	}
	return true
}
