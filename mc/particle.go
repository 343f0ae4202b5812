// Package mc holds the true (exact) Monte-Carlo event record: particles as
// the generator produced them, beam identification, and static particle
// properties. Nothing in this package is ever modified by smearing.
package mc

import "math"

// Generator status codes shared by the supported event generators.
const (
	StatusFinal = 1  // stable final-state particle
	StatusBeam  = 21 // beam or other initial/intermediate entry
)

// kinSentinel is stored for rapidity and pseudorapidity when the
// four-vector makes them undefined (e.g. E <= |pz|), so that input
// errors are easy to spot downstream.
const kinSentinel = -19.0

// Particle is one entry of the true event record. The primary four-vector
// and vertex are set at construction (or via SetPxPyPzE/SetVertex) and the
// derived kinematic quantities are cached; the setters are the only
// mutators, so the cache can never go stale.
type Particle struct {
	Index     int // 1-based index in the generator record
	Status    int
	PDG       int
	Parent    int // 1-based index of the parent, 0 = none
	Daughter  int // 1-based index of the first child, 0 = none
	LDaughter int // 1-based index of the last child, 0 = none

	px, py, pz, e float64
	m             float64
	vx, vy, vz    float64

	pt, p, theta, phi float64
	rapidity, eta     float64
}

// NewParticle builds a particle from its primary quantities and computes
// the derived kinematics.
func NewParticle(index, status, pdg int, px, py, pz, e, m float64) *Particle {
	pp := &Particle{Index: index, Status: status, PDG: pdg}
	pp.SetPxPyPzE(px, py, pz, e)
	pp.m = m
	return pp
}

// SetPxPyPzE replaces the primary four-vector and recomputes all cached
// derived quantities.
func (pp *Particle) SetPxPyPzE(px, py, pz, e float64) {
	pp.px, pp.py, pp.pz, pp.e = px, py, pz, e
	pp.computeDerived()
}

// SetVertex replaces the production vertex.
func (pp *Particle) SetVertex(x, y, z float64) {
	pp.vx, pp.vy, pp.vz = x, y, z
}

func (pp *Particle) computeDerived() {
	pp.pt = math.Sqrt(pp.px*pp.px + pp.py*pp.py)
	pp.p = math.Sqrt(pp.pt*pp.pt + pp.pz*pp.pz)

	ePlusPz := pp.e + pp.pz
	eMinusPz := pp.e - pp.pz
	pPlusPz := pp.p + pp.pz
	pMinusPz := pp.p - pp.pz
	if eMinusPz <= 0 || pMinusPz == 0 || pPlusPz == 0 || ePlusPz <= 0 {
		pp.rapidity = kinSentinel
		pp.eta = kinSentinel
	} else {
		pp.rapidity = 0.5 * math.Log(ePlusPz/eMinusPz)
		pp.eta = 0.5 * math.Log(pPlusPz/pMinusPz)
	}

	pp.theta = math.Atan2(pp.pt, pp.pz)
	phi := math.Atan2(pp.py, pp.px)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	pp.phi = phi
}

func (pp *Particle) Px() float64 { return pp.px }
func (pp *Particle) Py() float64 { return pp.py }
func (pp *Particle) Pz() float64 { return pp.pz }
func (pp *Particle) E() float64  { return pp.e }
func (pp *Particle) M() float64  { return pp.m }

func (pp *Particle) Vx() float64 { return pp.vx }
func (pp *Particle) Vy() float64 { return pp.vy }
func (pp *Particle) Vz() float64 { return pp.vz }

// Pt returns the transverse momentum.
func (pp *Particle) Pt() float64 { return pp.pt }

// P returns the total momentum.
func (pp *Particle) P() float64 { return pp.p }

// Theta returns the polar angle in [0, pi].
func (pp *Particle) Theta() float64 { return pp.theta }

// Phi returns the azimuthal angle folded into [0, 2pi).
func (pp *Particle) Phi() float64 { return pp.phi }

// Rapidity returns the rapidity, or -19 when undefined.
func (pp *Particle) Rapidity() float64 { return pp.rapidity }

// Eta returns the pseudorapidity, or -19 when undefined.
func (pp *Particle) Eta() float64 { return pp.eta }
