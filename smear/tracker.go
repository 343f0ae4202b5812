package smear

import (
	"math"
	"math/rand"

	"github.com/eic-tools/detsmear/mc"
)

// trackerCore holds the measurement model shared by the tracker
// geometries: a Gluckstern sagitta term plus a multiple-scattering term,
// both expressed in the tracker's bending plane. The transverse path
// length through the tracking volume is supplied by the geometry.
type trackerCore struct {
	Field     float64 // solenoid field in tesla
	PointRes  float64 // single-point resolution in meters
	NPoints   int     // number of measurement points
	RadLength float64 // material budget as a fraction of X0
}

// relSigmaPt returns sigma(pT)/pT for a charged particle with transverse
// momentum pt, total momentum p and energy e crossing a transverse path
// length l (meters), or -1 when the model is undefined for these inputs.
func (c trackerCore) relSigmaPt(pt, p, e, l float64) float64 {
	if l <= 0 || c.Field <= 0 || pt <= 0 || e <= 0 {
		return -1
	}
	sagitta := c.PointRes * pt * math.Sqrt(720/float64(c.NPoints+4)) / (0.3 * c.Field * l * l)
	var scatter float64
	if c.RadLength > 0 {
		beta := p / e
		// The projection onto the bending plane scales the scattering
		// contribution by p/pT, so shallow tracks resolve worse.
		scatter = 0.0136 * math.Sqrt(c.RadLength) * (p / pt) / (0.3 * c.Field * l * beta)
	}
	return math.Hypot(sagitta, scatter)
}

func (c trackerCore) validate(kind string) error {
	switch {
	case c.Field <= 0:
		return configErrorf("%s: field must be positive, got %g T", kind, c.Field)
	case c.PointRes <= 0:
		return configErrorf("%s: point resolution must be positive, got %g m", kind, c.PointRes)
	case c.NPoints < 2:
		return configErrorf("%s: need at least 2 measurement points, got %d", kind, c.NPoints)
	case c.RadLength < 0:
		return configErrorf("%s: radiation length fraction must not be negative", kind)
	}
	return nil
}

// measure produces the pT measurement plus any configured angular
// measurements, smearing in the tracker's native coordinates.
func (c trackerCore) measure(rng *rand.Rand, k Kin, l float64, theta, phi *Formula) []Measurement {
	rel := c.relSigmaPt(k.Pt, k.P, k.E, l)
	if rel < 0 {
		return nil
	}
	sigma := rel * k.Pt
	value := k.Pt
	if sigma != 0 {
		value += rng.NormFloat64() * sigma
	}
	ms := []Measurement{{Dim: DimPt, Value: value, Sigma: sigma}}
	for _, af := range []DimFormula{{DimTheta, theta}, {DimPhi, phi}} {
		if af.Formula == nil {
			continue
		}
		s, err := af.Formula.Eval(k)
		if err != nil {
			continue
		}
		s = math.Abs(s)
		v := k.Value(af.Dim)
		if s != 0 {
			v += rng.NormFloat64() * s
		}
		ms = append(ms, Measurement{Dim: af.Dim, Value: v, Sigma: s})
	}
	return ms
}

// RadialTracker is a barrel tracking volume: a cylindrical shell between
// InnerRadius and OuterRadius spanning ZMin..ZMax, measuring the
// transverse momentum of charged particles. The resolution follows the
// momentum resolution in the bending plane, with the path length derived
// from where a straight track from the origin leaves the volume.
type RadialTracker struct {
	trackerCore

	InnerRadius, OuterRadius float64 // meters
	ZMin, ZMax               float64 // meters, ZMin < 0 < ZMax

	// Optional angular resolutions measured alongside pT.
	ThetaFormula, PhiFormula *Formula

	// Zone adds kinematic cuts on top of the geometric acceptance.
	Zone Zone
}

// NewRadialTracker validates the geometry and measurement model.
func NewRadialTracker(inner, outer, zMin, zMax, field, pointRes float64, nPoints int, radLength float64) (*RadialTracker, error) {
	t := &RadialTracker{
		trackerCore: trackerCore{Field: field, PointRes: pointRes, NPoints: nPoints, RadLength: radLength},
		InnerRadius: inner,
		OuterRadius: outer,
		ZMin:        zMin,
		ZMax:        zMax,
	}
	if err := t.trackerCore.validate("radial tracker"); err != nil {
		return nil, err
	}
	if inner < 0 || outer <= inner {
		return nil, configErrorf("radial tracker: need 0 <= inner < outer radius, got %g and %g", inner, outer)
	}
	if zMin >= zMax {
		return nil, configErrorf("radial tracker: need zMin < zMax, got %g and %g", zMin, zMax)
	}
	return t, nil
}

// transversePath returns the radial distance a straight track at polar
// angle theta covers inside the shell, 0 when it misses the volume.
func (t *RadialTracker) transversePath(theta float64) float64 {
	tan := math.Abs(math.Tan(theta))
	if tan == 0 || math.IsNaN(tan) {
		return 0
	}
	zLim := t.ZMax
	if theta > math.Pi/2 {
		zLim = -t.ZMin
	}
	if zLim <= 0 {
		return 0
	}
	// Radius at which the track crosses the z boundary.
	rAtZLim := zLim * tan
	if rAtZLim <= t.InnerRadius {
		return 0
	}
	return math.Min(rAtZLim, t.OuterRadius) - t.InnerRadius
}

// Apply implements Smearer.
func (t *RadialTracker) Apply(rng *rand.Rand, p *mc.Particle, props mc.ParticleData) ([]Measurement, bool) {
	if props.Charge(p.PDG) == 0 || !t.Zone.Contains(p) {
		return nil, false
	}
	l := t.transversePath(p.Theta())
	if l <= 0 {
		return nil, false
	}
	ms := t.measure(rng, KinOf(p), l, t.ThetaFormula, t.PhiFormula)
	if ms == nil {
		return nil, false
	}
	return ms, true
}

// PlanarTracker is a set of tracking planes perpendicular to the beam
// axis between ZFront and ZBack (both on the same side of the origin),
// with radial extent RMin..RMax.
type PlanarTracker struct {
	trackerCore

	ZFront, ZBack float64 // meters, same sign, |ZFront| < |ZBack|
	RMin, RMax    float64 // meters

	ThetaFormula, PhiFormula *Formula

	Zone Zone
}

// NewPlanarTracker validates the geometry and measurement model.
func NewPlanarTracker(zFront, zBack, rMin, rMax, field, pointRes float64, nPoints int, radLength float64) (*PlanarTracker, error) {
	t := &PlanarTracker{
		trackerCore: trackerCore{Field: field, PointRes: pointRes, NPoints: nPoints, RadLength: radLength},
		ZFront:      zFront,
		ZBack:       zBack,
		RMin:        rMin,
		RMax:        rMax,
	}
	if err := t.trackerCore.validate("planar tracker"); err != nil {
		return nil, err
	}
	if zFront == 0 || zBack == 0 || math.Signbit(zFront) != math.Signbit(zBack) {
		return nil, configErrorf("planar tracker: planes must sit on one side of the origin")
	}
	if math.Abs(zFront) >= math.Abs(zBack) {
		return nil, configErrorf("planar tracker: need |zFront| < |zBack|")
	}
	if rMin < 0 || rMax <= rMin {
		return nil, configErrorf("planar tracker: need 0 <= rMin < rMax, got %g and %g", rMin, rMax)
	}
	return t, nil
}

// transversePath returns the radial distance covered between the first
// and last crossed plane, 0 when the track misses the planes.
func (t *PlanarTracker) transversePath(theta, pz float64) float64 {
	if pz == 0 || math.Signbit(pz) != math.Signbit(t.ZBack) {
		return 0
	}
	tan := math.Abs(math.Tan(theta))
	rFront := math.Abs(t.ZFront) * tan
	rBack := math.Abs(t.ZBack) * tan
	lo := math.Max(rFront, t.RMin)
	hi := math.Min(rBack, t.RMax)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Apply implements Smearer.
func (t *PlanarTracker) Apply(rng *rand.Rand, p *mc.Particle, props mc.ParticleData) ([]Measurement, bool) {
	if props.Charge(p.PDG) == 0 || !t.Zone.Contains(p) {
		return nil, false
	}
	l := t.transversePath(p.Theta(), p.Pz())
	if l <= 0 {
		return nil, false
	}
	ms := t.measure(rng, KinOf(p), l, t.ThetaFormula, t.PhiFormula)
	if ms == nil {
		return nil, false
	}
	return ms, true
}
