package smear

import (
	"math"
	"math/rand"

	"github.com/eic-tools/detsmear/mc"
)

// Bremsstrahlung models radiative energy loss of electrons in detector
// material, followed by an ordinary energy measurement. A Poisson number
// of photons with mean (4/3) * (X/X0) * ln(kMax/kMin) is drawn per
// traversal; each photon energy follows the 1/k spectrum between KMin and
// KMax and is subtracted from the particle's energy as long as the
// remainder stays above the electron mass. The configured resolution
// formula (possibly "0") is then applied to the degraded energy.
type Bremsstrahlung struct {
	Zone     Zone
	RadFrac  float64 // material traversed, as a fraction of X0
	KMin     float64 // softest photon energy in GeV
	KMax     float64 // hardest photon energy in GeV
	EFormula *Formula
}

// NewBremsstrahlung validates the loss model.
func NewBremsstrahlung(radFrac, kMin, kMax float64, eFormula *Formula) (*Bremsstrahlung, error) {
	switch {
	case radFrac <= 0:
		return nil, configErrorf("bremsstrahlung: radiation fraction must be positive, got %g", radFrac)
	case kMin <= 0 || kMax <= kMin:
		return nil, configErrorf("bremsstrahlung: need 0 < kMin < kMax, got %g and %g", kMin, kMax)
	}
	return &Bremsstrahlung{RadFrac: radFrac, KMin: kMin, KMax: kMax, EFormula: eFormula}, nil
}

// Apply implements Smearer. Only electrons and positrons radiate.
func (b *Bremsstrahlung) Apply(rng *rand.Rand, p *mc.Particle, props mc.ParticleData) ([]Measurement, bool) {
	if p.PDG != 11 && p.PDG != -11 {
		return nil, false
	}
	if !b.Zone.Contains(p) {
		return nil, false
	}

	k := KinOf(p)
	mass := props.Mass(p.PDG)
	e := k.E

	mean := (4.0 / 3.0) * b.RadFrac * math.Log(b.KMax/b.KMin)
	for i, n := 0, poisson(rng, mean); i < n; i++ {
		// 1/k spectrum between KMin and KMax.
		photon := b.KMin * math.Pow(b.KMax/b.KMin, rng.Float64())
		if e-photon <= mass {
			continue
		}
		e -= photon
	}

	var sigma float64
	if b.EFormula != nil {
		s, err := b.EFormula.Eval(k)
		if err != nil {
			// Loss happened but the measurement is undefined: the device
			// acted without reporting the dimension.
			return nil, true
		}
		sigma = math.Abs(s)
	}
	if sigma != 0 {
		e += rng.NormFloat64() * sigma
	}
	return []Measurement{{Dim: DimE, Value: e, Sigma: sigma}}, true
}

// poisson draws from a Poisson distribution by inversion of the
// exponential waiting times; the means used here are small.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	n := 0
	for prod := rng.Float64(); prod > limit; prod *= rng.Float64() {
		n++
	}
	return n
}
