package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eic-tools/detsmear/mc"
	"github.com/eic-tools/detsmear/smear"
)

func TestLoadAndBuild(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "detector.yaml"))
	require.NoError(t, err)

	assert.Equal(t, int64(20260826), cfg.Seed)
	require.Len(t, cfg.Devices, 4)

	pl, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, smear.MethodDoubleAngle, pl.Detector.Method)
	assert.Equal(t, smear.CombineInverseVariance, pl.Detector.Combine)
	assert.Equal(t, 11, pl.Finder.LeptonPDG)
	assert.Equal(t, int64(20260826), pl.Seed)
	assert.Len(t, pl.Detector.Devices, 4)
	assert.IsType(t, &smear.RadialTracker{}, pl.Detector.Devices[0])
	assert.IsType(t, &smear.Bremsstrahlung{}, pl.Detector.Devices[3])
	assert.IsType(t, &smear.MatrixPID{}, pl.Detector.PID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no-such.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func simpleDevice() DeviceConfig {
	return DeviceConfig{Type: "simple", Smear: map[string]string{"E": "0.1*sqrt(E)"}}
}

func TestBuildValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
	}{
		{"no devices", Config{}},
		{"unknown method", Config{
			Reconstruction: "neural",
			Devices:        []DeviceConfig{simpleDevice()},
		}},
		{"unknown combine policy", Config{
			Combine: "average",
			Devices: []DeviceConfig{simpleDevice()},
		}},
		{"unknown device type", Config{
			Devices: []DeviceConfig{{Type: "chromatograph"}},
		}},
		{"unknown genre", Config{
			Devices: []DeviceConfig{{Type: "simple", Genre: "muonic",
				Smear: map[string]string{"E": "0"}}},
		}},
		{"simple device without formulas", Config{
			Devices: []DeviceConfig{{Type: "simple"}},
		}},
		{"bad formula", Config{
			Devices: []DeviceConfig{{Type: "simple",
				Smear: map[string]string{"E": "0.1*sqrt("}}},
		}},
		{"cut-only smear dimension", Config{
			Devices: []DeviceConfig{{Type: "simple",
				Smear: map[string]string{"eta": "0.1"}}},
		}},
		{"unknown accept dimension", Config{
			Devices: []DeviceConfig{{Type: "simple",
				Accept: map[string][]*float64{"momentum": {nil, nil}},
				Smear:  map[string]string{"E": "0"}}},
		}},
		{"accept bounds not a pair", Config{
			Devices: []DeviceConfig{{Type: "simple",
				Accept: map[string][]*float64{"p": {nil}},
				Smear:  map[string]string{"E": "0"}}},
		}},
		{"accept low above high", Config{
			Devices: []DeviceConfig{{Type: "simple",
				Accept: map[string][]*float64{"p": {ptr(5), ptr(1)}},
				Smear:  map[string]string{"E": "0"}}},
		}},
		{"perfect device without dims", Config{
			Devices: []DeviceConfig{{Type: "perfect"}},
		}},
		{"tracker with energy smear", Config{
			Devices: []DeviceConfig{{Type: "radial-tracker",
				FieldTesla: 2, PointRes: 1e-4, NPlanes: 20, RadiationLength: 0.03,
				InnerRadius: 0.1, OuterRadius: 1, ZMin: -1, ZMax: 1,
				Smear: map[string]string{"E": "0.1"}}},
		}},
		{"tracker with inverted radii", Config{
			Devices: []DeviceConfig{{Type: "radial-tracker",
				FieldTesla: 2, PointRes: 1e-4, NPlanes: 20, RadiationLength: 0.03,
				InnerRadius: 1, OuterRadius: 0.1, ZMin: -1, ZMax: 1}},
		}},
		{"bremsstrahlung with bad photon window", Config{
			Devices: []DeviceConfig{{Type: "bremsstrahlung",
				RadFrac: 0.01, KMin: 5, KMax: 0.001}},
		}},
		{"matrix pid without rows", Config{
			PID:     PIDConfig{Model: "matrix"},
			Devices: []DeviceConfig{simpleDevice()},
		}},
		{"matrix pid duplicate row", Config{
			PID: PIDConfig{Model: "matrix", Matrix: []MatrixRow{
				{Species: 211, Observed: map[int]float64{211: 1}},
				{Species: 211, Observed: map[int]float64{321: 1}},
			}},
			Devices: []DeviceConfig{simpleDevice()},
		}},
		{"matrix pid unnormalized row", Config{
			PID: PIDConfig{Model: "matrix", Matrix: []MatrixRow{
				{Species: 211, Observed: map[int]float64{211: 0.5, 321: 0.4}},
			}},
			Devices: []DeviceConfig{simpleDevice()},
		}},
		{"formula pid with bad formula", Config{
			PID:     PIDConfig{Model: "formula", Formula: "1 - "},
			Devices: []DeviceConfig{simpleDevice()},
		}},
		{"unknown pid model", Config{
			PID:     PIDConfig{Model: "bayesian"},
			Devices: []DeviceConfig{simpleDevice()},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Build()
			assert.Error(t, err)
		})
	}
}

func TestBuildDefaults(t *testing.T) {
	cfg := Config{Devices: []DeviceConfig{simpleDevice()}}
	pl, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, smear.MethodElectron, pl.Detector.Method)
	assert.Equal(t, smear.CombineInverseVariance, pl.Detector.Combine)
	assert.Equal(t, 11, pl.Finder.LeptonPDG)
	assert.Equal(t, smear.PerfectPID{}, pl.Detector.PID)
}

// Smear formulas arrive as a YAML map; the built device must measure in a
// fixed dimension order or a fixed seed would not reproduce.
func TestBuildDeterministicDeviceOrder(t *testing.T) {
	cfg := Config{
		Seed: 7,
		Devices: []DeviceConfig{{Type: "simple", Smear: map[string]string{
			"phi": "0.002", "E": "0.1*sqrt(E)", "theta": "0.001", "p": "0.02*P",
		}}},
	}

	ev := &mc.Event{Number: 1, Particles: []*mc.Particle{
		mc.NewParticle(1, mc.StatusFinal, 211, 1.0, -0.5, 3.0, 3.3, 0.13957),
	}}

	first, err := cfg.Build()
	require.NoError(t, err)
	want := first.ProcessEvent(ev)
	require.Len(t, want.Particles, 1)

	for i := 0; i < 20; i++ {
		pl, err := cfg.Build()
		require.NoError(t, err)
		got := pl.ProcessEvent(ev)
		require.Len(t, got.Particles, 1)
		assert.Equal(t, want.Particles[0], got.Particles[0])
	}
}

func ptr(v float64) *float64 { return &v }
