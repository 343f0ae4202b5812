package smear

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eic-tools/detsmear/mc"
)

func barrelTracker(t *testing.T) *RadialTracker {
	t.Helper()
	tr, err := NewRadialTracker(0.1, 1.0, -1.5, 1.5, 2.0, 100e-6, 20, 0.03)
	require.NoError(t, err)
	return tr
}

func TestRadialTrackerGeometry(t *testing.T) {
	tr := barrelTracker(t)

	t.Run("full radial traversal at 90 degrees", func(t *testing.T) {
		assert.InDelta(t, 0.9, tr.transversePath(math.Pi/2), 1e-9)
	})
	t.Run("truncated by endcap", func(t *testing.T) {
		// tan(theta) = 0.4: leaves through z = 1.5 at r = 0.6.
		theta := math.Atan(0.4)
		assert.InDelta(t, 0.5, tr.transversePath(theta), 1e-9)
	})
	t.Run("misses the volume along the axis", func(t *testing.T) {
		assert.Zero(t, tr.transversePath(0))
		assert.InDelta(t, 0, tr.transversePath(0.01), 0.05)
	})
	t.Run("backward tracks use zMin", func(t *testing.T) {
		assert.InDelta(t, 0.9, tr.transversePath(math.Pi-math.Atan(2)), 1e-9)
	})
}

func TestRadialTrackerApply(t *testing.T) {
	tr := barrelTracker(t)
	rng := rand.New(rand.NewSource(3))

	t.Run("charged particle in the barrel is measured", func(t *testing.T) {
		pion := mc.NewParticle(1, mc.StatusFinal, 211, 3, 4, 0, 5.002, 0.13957061)
		ms, acted := tr.Apply(rng, pion, mc.PDG())
		require.True(t, acted)
		require.NotEmpty(t, ms)
		assert.Equal(t, DimPt, ms[0].Dim)
		assert.Greater(t, ms[0].Sigma, 0.0)
		// Resolution of a few-GeV track in a real-ish barrel is small.
		assert.Less(t, ms[0].Sigma/pion.Pt(), 0.05)
	})
	t.Run("neutral particle is not tracked", func(t *testing.T) {
		gamma := mc.NewParticle(1, mc.StatusFinal, 22, 3, 4, 0, 5, 0)
		_, acted := tr.Apply(rng, gamma, mc.PDG())
		assert.False(t, acted)
	})
	t.Run("forward track outside coverage", func(t *testing.T) {
		pion := mc.NewParticle(1, mc.StatusFinal, 211, 0.01, 0, 20, 20.01, 0.13957061)
		_, acted := tr.Apply(rng, pion, mc.PDG())
		assert.False(t, acted)
	})
	t.Run("angular formulas ride along", func(t *testing.T) {
		tr2 := barrelTracker(t)
		tr2.ThetaFormula = MustFormula("0")
		pion := mc.NewParticle(1, mc.StatusFinal, 211, 3, 4, 0, 5.002, 0.13957061)
		ms, acted := tr2.Apply(rng, pion, mc.PDG())
		require.True(t, acted)
		require.Len(t, ms, 2)
		assert.Equal(t, DimTheta, ms[1].Dim)
		assert.Equal(t, pion.Theta(), ms[1].Value)
	})
}

func TestRadialTrackerResolutionGrowsWithPt(t *testing.T) {
	tr := barrelTracker(t)
	low := tr.relSigmaPt(1, 1, 1.01, 0.9) * 1
	high := tr.relSigmaPt(50, 50, 50.0, 0.9) * 50
	assert.Greater(t, high, low)
}

func TestTrackerScatteringScalesWithTotalMomentum(t *testing.T) {
	// Negligible point resolution isolates the multiple-scattering term.
	core := trackerCore{Field: 2, PointRes: 1e-12, NPoints: 20, RadLength: 0.03}

	const l = 0.5
	barrel := core.relSigmaPt(1, 1, 1, l)
	forward := core.relSigmaPt(1, 5, 5, l)

	// A shallow track bends less per unit transverse momentum, so its
	// scattering contribution to sigma(pT)/pT grows as P/pT.
	assert.Greater(t, forward, barrel)
	assert.InDelta(t, 5.0, forward/barrel, 1e-6)

	want := 0.0136 * math.Sqrt(0.03) / (0.3 * 2 * l)
	assert.InDelta(t, want, barrel, 1e-9)
}

func TestPlanarTrackerGeometry(t *testing.T) {
	tr, err := NewPlanarTracker(1.0, 2.0, 0.1, 0.8, 2.0, 100e-6, 10, 0.02)
	require.NoError(t, err)

	t.Run("forward track crosses the planes", func(t *testing.T) {
		theta := math.Atan(0.3) // r = 0.3 at z=1, 0.6 at z=2
		assert.InDelta(t, 0.3, tr.transversePath(theta, 1), 1e-9)
	})
	t.Run("clamped by outer radius", func(t *testing.T) {
		theta := math.Atan(0.6) // r = 0.6 at z=1, 1.2 at z=2
		assert.InDelta(t, 0.2, tr.transversePath(theta, 1), 1e-9)
	})
	t.Run("backward track misses forward planes", func(t *testing.T) {
		assert.Zero(t, tr.transversePath(math.Pi-math.Atan(0.3), -1))
	})
	t.Run("too shallow to reach rMin", func(t *testing.T) {
		assert.Zero(t, tr.transversePath(math.Atan(0.01), 1))
	})
}

func TestTrackerConfigValidation(t *testing.T) {
	cases := []struct {
		name  string
		build func() error
	}{
		{"zero field", func() error {
			_, err := NewRadialTracker(0.1, 1, -1, 1, 0, 100e-6, 20, 0.03)
			return err
		}},
		{"inner >= outer", func() error {
			_, err := NewRadialTracker(1, 1, -1, 1, 2, 100e-6, 20, 0.03)
			return err
		}},
		{"too few points", func() error {
			_, err := NewRadialTracker(0.1, 1, -1, 1, 2, 100e-6, 1, 0.03)
			return err
		}},
		{"planar planes straddling origin", func() error {
			_, err := NewPlanarTracker(-1, 2, 0.1, 0.8, 2, 100e-6, 10, 0)
			return err
		}},
		{"planar radial extent", func() error {
			_, err := NewPlanarTracker(1, 2, 0.8, 0.1, 2, 100e-6, 10, 0)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build()
			require.Error(t, err)
			var cerr *ConfigError
			assert.True(t, errors.As(err, &cerr), "want *ConfigError, got %T", err)
		})
	}
}
