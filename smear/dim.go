package smear

import (
	"fmt"
	"math"

	"github.com/eic-tools/detsmear/mc"
)

// Dim names one kinematic dimension of a particle. The first numSmearDims
// dimensions can be measured by devices; the remaining ones exist only for
// acceptance cuts.
type Dim int

const (
	DimE Dim = iota
	DimP
	DimTheta
	DimPhi
	DimPt
	DimPz

	// Cut-only dimensions.
	DimEta
	DimY

	numDims
)

// numSmearDims is the number of dimensions a device may measure.
const numSmearDims = int(DimEta)

var dimNames = [numDims]string{"E", "P", "theta", "phi", "pT", "pZ", "eta", "y"}

func (d Dim) String() string {
	if d < 0 || int(d) >= len(dimNames) {
		return fmt.Sprintf("Dim(%d)", int(d))
	}
	return dimNames[d]
}

// ParseDim resolves a dimension name as used in configuration files.
func ParseDim(name string) (Dim, error) {
	switch name {
	case "E", "e":
		return DimE, nil
	case "P", "p":
		return DimP, nil
	case "theta":
		return DimTheta, nil
	case "phi":
		return DimPhi, nil
	case "pT", "pt", "Pt":
		return DimPt, nil
	case "pZ", "pz", "Pz":
		return DimPz, nil
	case "eta":
		return DimEta, nil
	case "y":
		return DimY, nil
	}
	return 0, configErrorf("unknown dimension %q", name)
}

// Kin is the kinematic view of a particle that formulas and acceptance
// cuts are evaluated against. It is always filled from true kinematics.
type Kin struct {
	E, P, Theta, Phi, Pt, Pz, Eta, Y, M float64
}

// KinOf captures the true kinematics of p.
func KinOf(p *mc.Particle) Kin {
	return Kin{
		E:     p.E(),
		P:     p.P(),
		Theta: p.Theta(),
		Phi:   p.Phi(),
		Pt:    p.Pt(),
		Pz:    p.Pz(),
		Eta:   p.Eta(),
		Y:     p.Rapidity(),
		M:     p.M(),
	}
}

// KinFor builds a consistent kinematic view from a momentum magnitude,
// polar angle and mass, for evaluating resolution formulas away from any
// particular particle (e.g. when plotting device curves).
func KinFor(p, theta, m float64) Kin {
	pt := p * math.Sin(theta)
	pz := p * math.Cos(theta)
	e := math.Sqrt(p*p + m*m)
	k := Kin{E: e, P: p, Theta: theta, Pt: pt, Pz: pz, M: m}
	if e > math.Abs(pz) {
		k.Y = 0.5 * math.Log((e+pz)/(e-pz))
	}
	if p > math.Abs(pz) {
		k.Eta = 0.5 * math.Log((p+pz)/(p-pz))
	}
	return k
}

// Value returns the component of k named by d.
func (k Kin) Value(d Dim) float64 {
	switch d {
	case DimE:
		return k.E
	case DimP:
		return k.P
	case DimTheta:
		return k.Theta
	case DimPhi:
		return k.Phi
	case DimPt:
		return k.Pt
	case DimPz:
		return k.Pz
	case DimEta:
		return k.Eta
	case DimY:
		return k.Y
	}
	return 0
}
