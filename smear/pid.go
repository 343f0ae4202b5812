package smear

import (
	"math"
	"math/rand"
	"sort"

	"github.com/eic-tools/detsmear/mc"
)

// UnknownSpecies is the sentinel species code reported when identification
// fails or is ambiguous. It can never be mistaken for a real measurement.
const UnknownSpecies = 0

// PID maps a particle's true species to the species the detector reports.
// Implementations draw randomness only from the supplied source.
type PID interface {
	Identify(rng *rand.Rand, p *mc.Particle) int
}

// PerfectPID always reports the true species. It performs no random draw
// at all, which keeps a perfect detector deterministic regardless of how
// many other consumers share the random source.
type PerfectPID struct{}

// Identify implements PID.
func (PerfectPID) Identify(_ *rand.Rand, p *mc.Particle) int { return p.PDG }

// rowNormTolerance bounds how far a confusion-matrix row may deviate from
// unit probability.
const rowNormTolerance = 1e-6

type pidEntry struct {
	pdg int
	cum float64
}

// MatrixPID identifies species by sampling a confusion matrix: one row per
// true species, each row a normalized distribution over observed species.
// True species without a row map to Unknown. Rows are keyed by particle
// code; antiparticles reuse their particle's row with the observed charge
// sign carried through.
type MatrixPID struct {
	rows    map[int][]pidEntry
	unknown int
}

// selfConjugate lists observed codes whose antiparticle is itself, so the
// sign flip for antiparticle rows must not touch them.
var selfConjugate = map[int]bool{22: true, 111: true, 221: true, 130: true, 310: true}

// NewMatrixPID validates and compiles the confusion matrix. Every row must
// contain only non-negative probabilities and sum to 1 within tolerance;
// violations are configuration errors, surfaced before any event is
// processed.
func NewMatrixPID(rows map[int]map[int]float64, unknown int) (*MatrixPID, error) {
	if len(rows) == 0 {
		return nil, configErrorf("identification matrix has no rows")
	}
	m := &MatrixPID{rows: make(map[int][]pidEntry, len(rows)), unknown: unknown}
	for trueID, row := range rows {
		sum := 0.0
		entries := make([]pidEntry, 0, len(row))
		for obs, prob := range row {
			if prob < 0 {
				return nil, configErrorf("identification matrix row %d: negative probability for %d", trueID, obs)
			}
			entries = append(entries, pidEntry{pdg: obs, cum: prob})
			sum += prob
		}
		if math.Abs(sum-1) > rowNormTolerance {
			return nil, configErrorf("identification matrix row %d sums to %g, want 1", trueID, sum)
		}
		// Deterministic sampling order regardless of map iteration.
		sort.Slice(entries, func(i, j int) bool { return entries[i].pdg < entries[j].pdg })
		cum := 0.0
		for i := range entries {
			cum += entries[i].cum
			entries[i].cum = cum
		}
		m.rows[trueID] = entries
	}
	return m, nil
}

// Identify implements PID: a single uniform draw walked through the row's
// cumulative distribution.
func (m *MatrixPID) Identify(rng *rand.Rand, p *mc.Particle) int {
	row, flip := m.rows[p.PDG], false
	if row == nil && p.PDG < 0 {
		row, flip = m.rows[-p.PDG], true
	}
	if row == nil {
		return m.unknown
	}
	u := rng.Float64()
	obs := m.unknown
	for _, e := range row {
		if u <= e.cum {
			obs = e.pdg
			break
		}
	}
	if flip && obs != m.unknown && !selfConjugate[obs] {
		obs = -obs
	}
	return obs
}

// FormulaPID identifies species from a probability-of-correct-identification
// formula evaluated at the particle's true kinematics. A failed draw, or a
// formula undefined at those kinematics, reports Unknown rather than
// failing the particle.
type FormulaPID struct {
	Prob    *Formula
	Unknown int
}

// Identify implements PID.
func (f *FormulaPID) Identify(rng *rand.Rand, p *mc.Particle) int {
	prob, err := f.Prob.Eval(KinOf(p))
	if err != nil {
		return f.Unknown
	}
	prob = math.Max(0, math.Min(1, prob))
	if rng.Float64() < prob {
		return p.PDG
	}
	return f.Unknown
}
