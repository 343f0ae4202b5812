package smear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eic-tools/detsmear/mc"
)

// testBeams is a 10 GeV electron on 100 GeV proton collision.
func testBeams() BeamParams {
	return BeamParams{
		LeptonEnergy: 10,
		HadronEnergy: 100,
		HadronMass:   0.9382720813,
		LeptonPDG:    11,
	}
}

// exactLepton builds a fully measured scattered-lepton observation.
func exactLepton(e, theta float64) *SmearedParticle {
	sp := &SmearedParticle{OrigIndex: 4, Status: mc.StatusFinal, PDG: 11, ObservedPDG: 11}
	sp.set(DimE, e)
	sp.set(DimTheta, theta)
	sp.set(DimPhi, 0)
	sp.set(DimP, math.Sqrt(e*e-0.000511*0.000511))
	return sp
}

// exactHadron builds a fully measured hadronic observation from a
// four-vector.
func exactHadron(px, py, pz, e float64) *SmearedParticle {
	p := mc.NewParticle(9, mc.StatusFinal, 211, px, py, pz, e, 0.13957061)
	sp := &SmearedParticle{OrigIndex: 9, Status: mc.StatusFinal, PDG: 211, ObservedPDG: 211}
	sp.set(DimE, p.E())
	sp.set(DimP, p.P())
	sp.set(DimTheta, p.Theta())
	sp.set(DimPhi, p.Phi())
	return sp
}

func TestElectronMethod(t *testing.T) {
	beams := testBeams()
	ePrime, theta := 8.0, 2.5

	kin := Reconstruct(MethodElectron, exactLepton(ePrime, theta), nil, mc.PDG(), beams)
	require.True(t, kin.Valid)

	wantQ2 := 2 * beams.LeptonEnergy * ePrime * (1 + math.Cos(theta))
	wantY := 1 - ePrime/(2*beams.LeptonEnergy)*(1-math.Cos(theta))
	assert.InDelta(t, wantQ2, kin.Q2, 1e-9)
	assert.InDelta(t, wantY, kin.Y, 1e-9)
	assert.InDelta(t, wantQ2/(beams.S()*wantY), kin.X, 1e-9)

	m2 := beams.HadronMass * beams.HadronMass
	assert.InDelta(t, m2+kin.Q2*(1-kin.X)/kin.X, kin.W2, 1e-6)
	assert.False(t, math.IsNaN(kin.W()))
}

func TestElectronMethodMissingLepton(t *testing.T) {
	kin := Reconstruct(MethodElectron, nil, []*SmearedParticle{exactHadron(1, 0, 2, 2.3)}, mc.PDG(), testBeams())
	assert.False(t, kin.Valid)
	assert.True(t, math.IsNaN(kin.Q2))
	assert.True(t, math.IsNaN(kin.X))
	assert.True(t, math.IsNaN(kin.Y))
}

func TestElectronMethodFallsBackToMomentum(t *testing.T) {
	lepton := exactLepton(8, 2.5)
	full := Reconstruct(MethodElectron, lepton, nil, mc.PDG(), testBeams())

	noE := &SmearedParticle{OrigIndex: 4, PDG: 11}
	noE.set(DimP, 8) // electron mass is negligible
	noE.set(DimTheta, 2.5)
	noE.set(DimPhi, 0)
	fromP := Reconstruct(MethodElectron, noE, nil, mc.PDG(), testBeams())

	require.True(t, fromP.Valid)
	assert.InDelta(t, full.Q2, fromP.Q2, 1e-3)
}

func TestJacquetBlondelMethod(t *testing.T) {
	beams := testBeams()
	hadrons := []*SmearedParticle{
		exactHadron(2.0, 0.5, 15, 15.15),
		exactHadron(-0.5, -1.0, 8, 8.08),
	}

	kin := Reconstruct(MethodJacquetBlondel, nil, hadrons, mc.PDG(), beams)
	require.True(t, kin.Valid)

	// Recompute the sums directly from the assembled four-vectors.
	var sumEMinusPz, ptX, ptY float64
	for _, h := range hadrons {
		px, py, pz, e, ok := h.PxPyPzE(mc.PDG().Mass(h.PDG))
		require.True(t, ok)
		sumEMinusPz += e - pz
		ptX += px
		ptY += py
	}
	wantY := sumEMinusPz / (2 * beams.LeptonEnergy)
	wantQ2 := (ptX*ptX + ptY*ptY) / (1 - wantY)
	assert.InDelta(t, wantY, kin.Y, 1e-9)
	assert.InDelta(t, wantQ2, kin.Q2, 1e-9)
}

func TestJacquetBlondelNoHadronsIsInvalid(t *testing.T) {
	// An accepted scattered lepton alone cannot feed Jacquet-Blondel:
	// the event must flag its kinematics invalid, never report zeros.
	kin := Reconstruct(MethodJacquetBlondel, exactLepton(8, 2.5), nil, mc.PDG(), testBeams())
	assert.False(t, kin.Valid)
	assert.True(t, math.IsNaN(kin.Q2))
	assert.True(t, math.IsNaN(kin.Y))
	assert.True(t, math.IsNaN(kin.X))
	assert.True(t, math.IsNaN(kin.W2))
}

func TestJacquetBlondelIgnoresUnmeasurableHadrons(t *testing.T) {
	// A hadron with no angular measurement cannot be used; with nothing
	// else the event is invalid.
	bare := &SmearedParticle{OrigIndex: 5, PDG: 211}
	bare.set(DimE, 3)
	kin := Reconstruct(MethodJacquetBlondel, nil, []*SmearedParticle{bare}, mc.PDG(), testBeams())
	assert.False(t, kin.Valid)
}

func TestDoubleAngleMethod(t *testing.T) {
	beams := testBeams()
	lepton := exactLepton(8, 2.5)
	hadrons := []*SmearedParticle{exactHadron(2.0, 0.5, 15, 15.15)}

	kin := Reconstruct(MethodDoubleAngle, lepton, hadrons, mc.PDG(), beams)
	require.True(t, kin.Valid)
	assert.Greater(t, kin.Q2, 0.0)
	assert.Greater(t, kin.X, 0.0)
	assert.InDelta(t, kin.Y, kin.Q2/(beams.S()*kin.X), 1e-9*kin.Y)

	t.Run("needs the lepton angle", func(t *testing.T) {
		kin := Reconstruct(MethodDoubleAngle, nil, hadrons, mc.PDG(), beams)
		assert.False(t, kin.Valid)
	})
	t.Run("needs hadrons", func(t *testing.T) {
		kin := Reconstruct(MethodDoubleAngle, lepton, nil, mc.PDG(), beams)
		assert.False(t, kin.Valid)
	})
}

func TestKinematicsRejectsUnphysicalY(t *testing.T) {
	beams := testBeams()
	// A "measured" lepton energy far above the beam energy drives y
	// negative; the result must be flagged, not clamped.
	kin := Reconstruct(MethodElectron, exactLepton(80, 2.5), nil, mc.PDG(), beams)
	assert.False(t, kin.Valid)
}

func TestBeamParamsS(t *testing.T) {
	beams := testBeams()
	// Head-on 10x100 GeV: s ~ 4 * Ee * Ep up to the proton mass.
	assert.InDelta(t, 4*10*100, beams.S(), 1.0)
}
