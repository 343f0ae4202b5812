package smear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eic-tools/detsmear/mc"
)

func testParticle(px, py, pz, e float64) *mc.Particle {
	return mc.NewParticle(1, mc.StatusFinal, 211, px, py, pz, e, 0.13957061)
}

func TestZoneEmptyAcceptsEverything(t *testing.T) {
	z := NewZone()
	particles := []*mc.Particle{
		testParticle(3, 4, 0, 5.002),
		testParticle(0, 0, 1000, 1000),
		testParticle(-0.001, 0, -900, 900),
	}
	for _, p := range particles {
		assert.True(t, z.Contains(p))
	}
}

func TestZoneUnboundedRangesAcceptEverything(t *testing.T) {
	inf := math.Inf(1)
	z := NewZone().
		With(DimTheta, math.Inf(-1), inf).
		With(DimP, math.Inf(-1), inf).
		With(DimEta, math.Inf(-1), inf)
	assert.True(t, z.Contains(testParticle(0, 0, 500, 500)))
	assert.True(t, z.Contains(testParticle(1, 0, 0, 1.01)))
}

func TestZoneRanges(t *testing.T) {
	z := NewZone().With(DimTheta, 0.1, 3.0).With(DimP, 0.5, math.Inf(1))

	t.Run("inside", func(t *testing.T) {
		assert.True(t, z.Contains(testParticle(3, 4, 0, 5.002)))
	})
	t.Run("below theta window", func(t *testing.T) {
		assert.False(t, z.Contains(testParticle(0.01, 0, 10, 10.01)))
	})
	t.Run("below momentum cut", func(t *testing.T) {
		assert.False(t, z.Contains(testParticle(0.1, 0.1, 0.1, 0.25)))
	})
	t.Run("bounds are inclusive", func(t *testing.T) {
		p := mc.NewParticle(1, mc.StatusFinal, 211, 0.5, 0, 0, 0.52, 0.13957061)
		// P exactly at the lower bound, theta = pi/2 inside the window.
		assert.True(t, z.Contains(p))
	})
}

func TestZoneIntersectIsAnd(t *testing.T) {
	a := NewZone().With(DimTheta, 0, 2)
	b := NewZone().With(DimTheta, 1, 3).With(DimP, 1, 10)
	both := a.Intersect(b)

	// theta must fall in [1,2] now.
	inside := mc.NewParticle(1, mc.StatusFinal, 211, 5, 0, 0, 5.1, 0.14) // theta = pi/2
	assert.True(t, both.Contains(inside))

	lowTheta := mc.NewParticle(1, mc.StatusFinal, 211, 2, 0, 3, 3.7, 0.14) // theta ~ 0.588
	assert.True(t, a.Contains(lowTheta))
	assert.False(t, both.Contains(lowTheta))

	lowP := mc.NewParticle(1, mc.StatusFinal, 211, 0.5, 0, 0, 0.55, 0.14)
	assert.False(t, both.Contains(lowP))
}
