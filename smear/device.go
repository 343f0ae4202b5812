package smear

import (
	"math"
	"math/rand"

	"github.com/eic-tools/detsmear/mc"
)

// Genre restricts which species a device responds to.
type Genre int

const (
	GenreAll Genre = iota
	// GenreElectromagnetic matches electrons and photons.
	GenreElectromagnetic
	// GenreHadronic matches everything except electrons and photons.
	GenreHadronic
)

func (g Genre) String() string {
	switch g {
	case GenreElectromagnetic:
		return "electromagnetic"
	case GenreHadronic:
		return "hadronic"
	}
	return "all"
}

// ParseGenre resolves a genre name as used in configuration files.
func ParseGenre(name string) (Genre, error) {
	switch name {
	case "", "all":
		return GenreAll, nil
	case "electromagnetic", "em":
		return GenreElectromagnetic, nil
	case "hadronic":
		return GenreHadronic, nil
	}
	return 0, configErrorf("unknown genre %q", name)
}

func (g Genre) matches(pdg int) bool {
	em := pdg == 22 || pdg == 11 || pdg == -11
	switch g {
	case GenreElectromagnetic:
		return em
	case GenreHadronic:
		return !em
	}
	return true
}

// Measurement is one device's report for one dimension: the smeared value
// and the resolution the device evaluated at the particle's true
// kinematics. Sigma 0 means the value is exact.
type Measurement struct {
	Dim   Dim
	Value float64
	Sigma float64
}

// Smearer is a detector device: it measures some dimensions of a particle
// within its acceptance. The boolean result reports whether the device
// acted on the particle at all; false means the particle was outside the
// device's acceptance or species coverage, and says nothing about the
// particle's fate in other devices.
//
// Implementations are immutable after construction and draw randomness
// only from the supplied source, so they can be shared across workers.
type Smearer interface {
	Apply(rng *rand.Rand, p *mc.Particle, props mc.ParticleData) ([]Measurement, bool)
}

// DimFormula binds a measured dimension to its resolution formula.
type DimFormula struct {
	Dim     Dim
	Formula *Formula
}

// Device is the simple parametrized smearer: an acceptance zone, a species
// filter, and one resolution formula per measured dimension. Each
// measurement adds a Gaussian deviate of the evaluated width to the true
// value; a width of exactly zero reports the true value bit-for-bit and
// draws nothing from the random source.
type Device struct {
	Zone        Zone
	Genre       Genre
	ChargedOnly bool
	Dims        []DimFormula
}

func (d *Device) accepts(p *mc.Particle, props mc.ParticleData) bool {
	if !d.Zone.Contains(p) {
		return false
	}
	if !d.Genre.matches(p.PDG) {
		return false
	}
	if d.ChargedOnly && props.Charge(p.PDG) == 0 {
		return false
	}
	return true
}

// Apply implements Smearer. Dimensions whose formula is undefined at the
// particle's kinematics are silently left unmeasured.
func (d *Device) Apply(rng *rand.Rand, p *mc.Particle, props mc.ParticleData) ([]Measurement, bool) {
	if !d.accepts(p, props) {
		return nil, false
	}
	k := KinOf(p)
	ms := make([]Measurement, 0, len(d.Dims))
	for _, df := range d.Dims {
		sigma, err := df.Formula.Eval(k)
		if err != nil {
			continue // dimension not measurable for this particle
		}
		sigma = math.Abs(sigma)
		value := k.Value(df.Dim)
		if sigma != 0 {
			value += rng.NormFloat64() * sigma
		}
		ms = append(ms, Measurement{Dim: df.Dim, Value: value, Sigma: sigma})
	}
	return ms, true
}

// PerfectDevice reports the true value of each configured dimension with
// zero resolution. Unlike a Device with "0" formulas it never consults a
// formula, so it cannot hit evaluation failures.
type PerfectDevice struct {
	Zone        Zone
	Genre       Genre
	ChargedOnly bool
	Dims        []Dim
}

// Apply implements Smearer.
func (d *PerfectDevice) Apply(_ *rand.Rand, p *mc.Particle, props mc.ParticleData) ([]Measurement, bool) {
	dev := Device{Zone: d.Zone, Genre: d.Genre, ChargedOnly: d.ChargedOnly}
	if !dev.accepts(p, props) {
		return nil, false
	}
	k := KinOf(p)
	ms := make([]Measurement, 0, len(d.Dims))
	for _, dim := range d.Dims {
		ms = append(ms, Measurement{Dim: dim, Value: k.Value(dim)})
	}
	return ms, true
}
