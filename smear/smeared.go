package smear

import "math"

// SmearedParticle is the observation record for one true particle. The
// back reference to the original is by 1-based generator index rather than
// pointer, so it survives serialization and filtering. Each measurable
// dimension carries a validity bit: an unmeasured dimension has no value
// at all, never a zero standing in for one.
type SmearedParticle struct {
	// OrigIndex is the generator index of the true particle this
	// observation belongs to.
	OrigIndex int
	Status    int
	// PDG is the true species; ObservedPDG is what the detector's
	// identification reported (possibly UnknownSpecies).
	PDG         int
	ObservedPDG int

	vals     [numSmearDims]float64
	measured [numSmearDims]bool
}

func (sp *SmearedParticle) set(d Dim, v float64) {
	sp.vals[d] = v
	sp.measured[d] = true
}

// Value returns the smeared value of d and whether it was measured.
func (sp *SmearedParticle) Value(d Dim) (float64, bool) {
	if int(d) >= numSmearDims || !sp.measured[d] {
		return 0, false
	}
	return sp.vals[d], true
}

func (sp *SmearedParticle) E() (float64, bool)     { return sp.Value(DimE) }
func (sp *SmearedParticle) P() (float64, bool)     { return sp.Value(DimP) }
func (sp *SmearedParticle) Theta() (float64, bool) { return sp.Value(DimTheta) }
func (sp *SmearedParticle) Phi() (float64, bool)   { return sp.Value(DimPhi) }
func (sp *SmearedParticle) Pt() (float64, bool)    { return sp.Value(DimPt) }
func (sp *SmearedParticle) Pz() (float64, bool)    { return sp.Value(DimPz) }

// PMag resolves the total momentum from whichever momentum dimensions were
// measured, falling back to pT or pz with the measured polar angle.
func (sp *SmearedParticle) PMag() (float64, bool) {
	if p, ok := sp.P(); ok {
		return math.Abs(p), true
	}
	theta, haveTheta := sp.Theta()
	if pt, ok := sp.Pt(); ok {
		if haveTheta && math.Sin(theta) != 0 {
			return math.Abs(pt / math.Sin(theta)), true
		}
		if pz, ok := sp.Pz(); ok {
			return math.Hypot(pt, pz), true
		}
	}
	if pz, ok := sp.Pz(); ok && haveTheta && math.Cos(theta) != 0 {
		return math.Abs(pz / math.Cos(theta)), true
	}
	return 0, false
}

// PxPyPzE assembles a four-vector from the measured dimensions, using mass
// (the true-species mass) as the hypothesis when energy was not measured.
// ok is false when the momentum vector is not recoverable from what was
// measured.
func (sp *SmearedParticle) PxPyPzE(mass float64) (px, py, pz, e float64, ok bool) {
	theta, haveTheta := sp.Theta()
	phi, havePhi := sp.Phi()
	p, haveP := sp.PMag()
	if !haveTheta || !havePhi || !haveP {
		return 0, 0, 0, 0, false
	}
	sin := math.Sin(theta)
	px = p * sin * math.Cos(phi)
	py = p * sin * math.Sin(phi)
	pz = p * math.Cos(theta)
	if ev, okE := sp.E(); okE {
		e = ev
	} else {
		e = math.Sqrt(p*p + mass*mass)
	}
	return px, py, pz, e, true
}

// SmearedEvent is the observation record for one true event: the accepted
// smeared particles in the true record's order, plus the reconstructed
// event kinematics. Events that lose every particle to acceptance are
// still emitted, empty, with invalid kinematics.
type SmearedEvent struct {
	Number int
	// S is the squared center-of-mass energy, copied unchanged from the
	// true event.
	S float64

	Particles []*SmearedParticle

	Method ReconstructionMethod
	Kin    Kinematics
}

// Particle returns the smeared observation of the true particle with
// generator index i, or nil when that particle was not accepted.
func (ev *SmearedEvent) Particle(i int) *SmearedParticle {
	for _, sp := range ev.Particles {
		if sp.OrigIndex == i {
			return sp
		}
	}
	return nil
}
