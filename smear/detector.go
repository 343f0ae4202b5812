package smear

import (
	"math"
	"math/rand"

	"github.com/eic-tools/detsmear/mc"
)

// CombinePolicy selects how the detector merges several devices' reports
// for the same dimension of the same particle. The policy is explicit
// configuration: deployments must state which combination they mean.
type CombinePolicy int

const (
	// CombineInverseVariance takes the precision-weighted average, with
	// weights 1/sigma^2. An exact measurement (sigma 0) wins outright.
	CombineInverseVariance CombinePolicy = iota
	// CombineLastWins keeps the report of the last device, in configured
	// order, that measured the dimension.
	CombineLastWins
)

func (c CombinePolicy) String() string {
	if c == CombineLastWins {
		return "last-wins"
	}
	return "inverse-variance"
}

// ParseCombinePolicy resolves a policy name as used in configuration files.
func ParseCombinePolicy(name string) (CombinePolicy, error) {
	switch name {
	case "", "inverse-variance":
		return CombineInverseVariance, nil
	case "last-wins":
		return CombineLastWins, nil
	}
	return 0, configErrorf("unknown combine policy %q", name)
}

// Detector is an ordered collection of devices plus one identification
// model and the kinematics-reconstruction method the pipeline should use.
// It exclusively owns its devices and identification model; particles only
// pass through. A Detector is immutable after construction and safe to
// share across concurrent workers.
type Detector struct {
	Devices []Smearer
	PID     PID
	Method  ReconstructionMethod
	Combine CombinePolicy
}

type dimAccum struct {
	n      int
	sumW   float64
	sumWV  float64
	exact  bool
	exactV float64
	last   float64
}

// Smear runs every device over the particle in configured order and merges
// their reports. The particle is accepted iff at least one device acted on
// it; dimensions no device measured stay unmeasured on the output.
// Identification runs exactly once per accepted particle, after all
// devices.
func (d *Detector) Smear(rng *rand.Rand, p *mc.Particle, props mc.ParticleData) (*SmearedParticle, bool) {
	var acc [numSmearDims]dimAccum
	acted := false
	for _, dev := range d.Devices {
		ms, ok := dev.Apply(rng, p, props)
		if !ok {
			continue
		}
		acted = true
		for _, m := range ms {
			if int(m.Dim) >= numSmearDims {
				continue
			}
			a := &acc[m.Dim]
			a.n++
			a.last = m.Value
			if m.Sigma == 0 {
				if !a.exact {
					a.exact = true
					a.exactV = m.Value
				}
				continue
			}
			w := 1 / (m.Sigma * m.Sigma)
			a.sumW += w
			a.sumWV += w * m.Value
		}
	}
	if !acted {
		return nil, false
	}

	sp := &SmearedParticle{OrigIndex: p.Index, Status: p.Status, PDG: p.PDG}
	for dim := 0; dim < numSmearDims; dim++ {
		a := &acc[dim]
		if a.n == 0 {
			continue
		}
		switch d.Combine {
		case CombineLastWins:
			sp.set(Dim(dim), a.last)
		default:
			if a.exact {
				sp.set(Dim(dim), a.exactV)
			} else if a.sumW > 0 {
				sp.set(Dim(dim), a.sumWV/a.sumW)
			}
		}
	}

	pid := d.PID
	if pid == nil {
		pid = PerfectPID{}
	}
	sp.ObservedPDG = pid.Identify(rng, p)
	return sp, true
}

// CombinedSigma returns the resolution of an inverse-variance combination
// of the given device resolutions; it is never larger than the best input.
func CombinedSigma(sigmas ...float64) float64 {
	sumW := 0.0
	for _, s := range sigmas {
		if s == 0 {
			return 0
		}
		sumW += 1 / (s * s)
	}
	if sumW == 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(sumW)
}
