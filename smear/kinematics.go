package smear

import (
	"math"

	"github.com/eic-tools/detsmear/mc"
)

// ReconstructionMethod selects the numerical recipe used to recover the
// event-level DIS invariants from the smeared final state.
type ReconstructionMethod int

const (
	// MethodElectron uses only the scattered lepton's energy and angle.
	MethodElectron ReconstructionMethod = iota
	// MethodJacquetBlondel uses only the hadronic final state, so it works
	// when the scattered lepton escapes acceptance.
	MethodJacquetBlondel
	// MethodDoubleAngle uses only the lepton and hadronic angles, making
	// it insensitive to momentum-scale miscalibration.
	MethodDoubleAngle
)

func (m ReconstructionMethod) String() string {
	switch m {
	case MethodJacquetBlondel:
		return "jacquet-blondel"
	case MethodDoubleAngle:
		return "double-angle"
	}
	return "electron"
}

// ParseMethod resolves a method name as used in configuration files.
func ParseMethod(name string) (ReconstructionMethod, error) {
	switch name {
	case "", "electron":
		return MethodElectron, nil
	case "jacquet-blondel", "jb":
		return MethodJacquetBlondel, nil
	case "double-angle", "da":
		return MethodDoubleAngle, nil
	}
	return 0, configErrorf("unknown reconstruction method %q", name)
}

// BeamParams are the beam quantities every reconstruction method needs,
// taken from the true event record. The lepton beam travels along -z, the
// hadron beam along +z.
type BeamParams struct {
	LeptonEnergy float64
	HadronEnergy float64
	HadronMass   float64
	LeptonPDG    int
}

// BeamsOf derives the parameters from identified beam particles.
func BeamsOf(b mc.Beams) BeamParams {
	var bp BeamParams
	if b.Lepton != nil {
		bp.LeptonEnergy = b.Lepton.E()
		bp.LeptonPDG = b.Lepton.PDG
	}
	if b.Hadron != nil {
		bp.HadronEnergy = b.Hadron.E()
		bp.HadronMass = b.Hadron.M()
	}
	return bp
}

// S returns the squared center-of-mass energy for head-on beams.
func (b BeamParams) S() float64 {
	pz := b.HadronEnergy*b.HadronEnergy - b.HadronMass*b.HadronMass
	if pz < 0 {
		return 0
	}
	return b.HadronMass*b.HadronMass + 2*b.LeptonEnergy*(b.HadronEnergy+math.Sqrt(pz))
}

// Kinematics are the reconstructed event-level DIS invariants. When a
// method's required inputs are missing or the numbers do not close, Valid
// is false and the values are NaN: a flagged state, never a zero
// masquerading as a measurement.
type Kinematics struct {
	Q2, X, Y, W2 float64
	Valid        bool
}

// W returns sqrt(W2).
func (k Kinematics) W() float64 {
	if !k.Valid || k.W2 < 0 {
		return math.NaN()
	}
	return math.Sqrt(k.W2)
}

func invalidKinematics() Kinematics {
	nan := math.NaN()
	return Kinematics{Q2: nan, X: nan, Y: nan, W2: nan}
}

// Reconstruct computes the event kinematics with the chosen method.
// lepton is the smeared scattered lepton (nil when not accepted); hadrons
// are the remaining accepted final-state observations; masses resolves the
// true-species mass hypothesis for particles without an energy
// measurement.
func Reconstruct(method ReconstructionMethod, lepton *SmearedParticle, hadrons []*SmearedParticle, masses mc.ParticleData, beams BeamParams) Kinematics {
	switch method {
	case MethodJacquetBlondel:
		return jacquetBlondelKinematics(hadrons, masses, beams)
	case MethodDoubleAngle:
		return doubleAngleKinematics(lepton, hadrons, masses, beams)
	default:
		return electronKinematics(lepton, beams)
	}
}

// close finalizes x and W2 from Q2 and y, rejecting results that are not
// physical.
func closeKinematics(q2, y, s, m2 float64) Kinematics {
	if !(y > 0 && y <= 1) || q2 <= 0 || s <= 0 {
		return invalidKinematics()
	}
	x := q2 / (s * y)
	if !(x > 0) || math.IsInf(x, 0) {
		return invalidKinematics()
	}
	w2 := m2 + q2*(1-x)/x
	k := Kinematics{Q2: q2, X: x, Y: y, W2: w2, Valid: true}
	if math.IsNaN(q2) || math.IsNaN(w2) {
		return invalidKinematics()
	}
	return k
}

func electronKinematics(lepton *SmearedParticle, beams BeamParams) Kinematics {
	if lepton == nil || beams.LeptonEnergy <= 0 {
		return invalidKinematics()
	}
	theta, okTheta := lepton.Theta()
	ePrime, okE := lepton.E()
	if !okE {
		// Fall back on the momentum measurement; the electron mass is
		// negligible against any measurable momentum.
		ePrime, okE = lepton.PMag()
	}
	if !okTheta || !okE || ePrime <= 0 {
		return invalidKinematics()
	}
	ee := beams.LeptonEnergy
	q2 := 2 * ee * ePrime * (1 + math.Cos(theta))
	y := 1 - ePrime/(2*ee)*(1-math.Cos(theta))
	return closeKinematics(q2, y, beams.S(), beams.HadronMass*beams.HadronMass)
}

// hadronicSums accumulates sum(E - pz) and the transverse momentum vector
// of the observed hadronic final state. Particles whose four-vector cannot
// be assembled from their measured dimensions are left out.
func hadronicSums(hadrons []*SmearedParticle, masses mc.ParticleData) (sumEMinusPz, ptX, ptY float64, n int) {
	for _, h := range hadrons {
		px, py, pz, e, ok := h.PxPyPzE(masses.Mass(h.PDG))
		if !ok {
			continue
		}
		sumEMinusPz += e - pz
		ptX += px
		ptY += py
		n++
	}
	return sumEMinusPz, ptX, ptY, n
}

func jacquetBlondelKinematics(hadrons []*SmearedParticle, masses mc.ParticleData, beams BeamParams) Kinematics {
	if beams.LeptonEnergy <= 0 {
		return invalidKinematics()
	}
	sumEMinusPz, ptX, ptY, n := hadronicSums(hadrons, masses)
	if n == 0 {
		return invalidKinematics()
	}
	y := sumEMinusPz / (2 * beams.LeptonEnergy)
	if !(y > 0 && y < 1) {
		return invalidKinematics()
	}
	pt2 := ptX*ptX + ptY*ptY
	q2 := pt2 / (1 - y)
	return closeKinematics(q2, y, beams.S(), beams.HadronMass*beams.HadronMass)
}

func doubleAngleKinematics(lepton *SmearedParticle, hadrons []*SmearedParticle, masses mc.ParticleData, beams BeamParams) Kinematics {
	if lepton == nil || beams.LeptonEnergy <= 0 {
		return invalidKinematics()
	}
	theta, okTheta := lepton.Theta()
	if !okTheta {
		return invalidKinematics()
	}
	sumEMinusPz, ptX, ptY, n := hadronicSums(hadrons, masses)
	pt := math.Hypot(ptX, ptY)
	if n == 0 || pt <= 0 || sumEMinusPz <= 0 {
		return invalidKinematics()
	}
	gamma := 2 * math.Atan(sumEMinusPz/pt)
	denom := math.Sin(gamma) + math.Sin(theta) - math.Sin(gamma+theta)
	if denom == 0 {
		return invalidKinematics()
	}
	ee := beams.LeptonEnergy
	q2 := 4 * ee * ee * math.Sin(gamma) * (1 + math.Cos(theta)) / denom
	y := math.Sin(theta) * (1 - math.Cos(gamma)) / denom
	return closeKinematics(q2, y, beams.S(), beams.HadronMass*beams.HadronMass)
}
