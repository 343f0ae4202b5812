// Package config loads detector descriptions from YAML and builds the
// corresponding smearing pipeline. Every configuration problem is
// reported before any event is processed.
package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/eic-tools/detsmear/mc"
	"github.com/eic-tools/detsmear/smear"
)

// Config mirrors the YAML detector description. See testdata/detector.yaml
// for a commented example.
type Config struct {
	Seed           int64          `yaml:"seed"`
	Reconstruction string         `yaml:"reconstruction"`
	Combine        string         `yaml:"combine"`
	LeptonBeam     int            `yaml:"lepton_beam"`
	PID            PIDConfig      `yaml:"pid"`
	Devices        []DeviceConfig `yaml:"devices"`
}

// PIDConfig selects and parametrizes the identification model.
type PIDConfig struct {
	Model   string      `yaml:"model"`
	Unknown int         `yaml:"unknown"`
	Matrix  []MatrixRow `yaml:"matrix"`
	Formula string      `yaml:"formula"`
}

// MatrixRow is one row of a confusion matrix: the probabilities of each
// observed species given the true one. Probabilities must sum to 1.
type MatrixRow struct {
	Species  int             `yaml:"species"`
	Observed map[int]float64 `yaml:"observed"`
}

// DeviceConfig describes one device. Type selects which of the parameter
// groups below apply; unused ones are ignored.
type DeviceConfig struct {
	Type        string                `yaml:"type"`
	Genre       string                `yaml:"genre"`
	ChargedOnly bool                  `yaml:"charged_only"`
	Accept      map[string][]*float64 `yaml:"accept"`
	Smear       map[string]string     `yaml:"smear"`

	// perfect devices
	Dims []string `yaml:"dims"`

	// trackers
	FieldTesla      float64 `yaml:"field_tesla"`
	PointRes        float64 `yaml:"point_res"`
	RadiationLength float64 `yaml:"radiation_length"`
	NPlanes         int     `yaml:"n_planes"`
	InnerRadius     float64 `yaml:"inner_radius"`
	OuterRadius     float64 `yaml:"outer_radius"`
	ZMin            float64 `yaml:"z_min"`
	ZMax            float64 `yaml:"z_max"`
	ZFront          float64 `yaml:"z_front"`
	ZBack           float64 `yaml:"z_back"`
	RMin            float64 `yaml:"r_min"`
	RMax            float64 `yaml:"r_max"`

	// bremsstrahlung
	RadFrac float64 `yaml:"rad_frac"`
	KMin    float64 `yaml:"k_min"`
	KMax    float64 `yaml:"k_max"`
	Res     string  `yaml:"res"`
}

// Load reads and decodes a detector description.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading detector config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Build validates the configuration and assembles the pipeline.
func (c *Config) Build() (*smear.Pipeline, error) {
	method, err := smear.ParseMethod(c.Reconstruction)
	if err != nil {
		return nil, err
	}
	combine, err := smear.ParseCombinePolicy(c.Combine)
	if err != nil {
		return nil, err
	}
	pid, err := c.PID.build()
	if err != nil {
		return nil, err
	}
	if len(c.Devices) == 0 {
		return nil, &smear.ConfigError{Msg: "no devices configured"}
	}

	devices := make([]smear.Smearer, 0, len(c.Devices))
	for i := range c.Devices {
		dev, err := c.Devices[i].build()
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", i, err)
		}
		devices = append(devices, dev)
	}

	det := &smear.Detector{
		Devices: devices,
		PID:     pid,
		Method:  method,
		Combine: combine,
	}
	lepton := c.LeptonBeam
	if lepton == 0 {
		lepton = 11
	}
	return smear.NewPipeline(det, mc.BeamFinder{LeptonPDG: lepton}, c.Seed), nil
}

func (p *PIDConfig) build() (smear.PID, error) {
	switch p.Model {
	case "", "perfect":
		return smear.PerfectPID{}, nil
	case "matrix":
		if len(p.Matrix) == 0 {
			return nil, &smear.ConfigError{Msg: "matrix pid: no rows configured"}
		}
		rows := make(map[int]map[int]float64, len(p.Matrix))
		for _, r := range p.Matrix {
			if _, dup := rows[r.Species]; dup {
				return nil, &smear.ConfigError{Msg: fmt.Sprintf("matrix pid: duplicate row for species %d", r.Species)}
			}
			rows[r.Species] = r.Observed
		}
		return smear.NewMatrixPID(rows, p.Unknown)
	case "formula":
		f, err := smear.NewFormula(p.Formula)
		if err != nil {
			return nil, err
		}
		return &smear.FormulaPID{Prob: f, Unknown: p.Unknown}, nil
	}
	return nil, &smear.ConfigError{Msg: fmt.Sprintf("unknown pid model %q", p.Model)}
}

func (d *DeviceConfig) build() (smear.Smearer, error) {
	zone, err := buildZone(d.Accept)
	if err != nil {
		return nil, err
	}
	switch d.Type {
	case "", "simple":
		return d.buildSimple(zone)
	case "perfect":
		return d.buildPerfect(zone)
	case "radial-tracker", "planar-tracker":
		return d.buildTracker(zone)
	case "bremsstrahlung":
		return d.buildBrems(zone)
	}
	return nil, &smear.ConfigError{Msg: fmt.Sprintf("unknown device type %q", d.Type)}
}

func (d *DeviceConfig) buildSimple(zone smear.Zone) (smear.Smearer, error) {
	genre, err := smear.ParseGenre(d.Genre)
	if err != nil {
		return nil, err
	}
	dims, err := buildDimFormulas(d.Smear)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, &smear.ConfigError{Msg: "simple device: no smear formulas configured"}
	}
	return &smear.Device{Zone: zone, Genre: genre, ChargedOnly: d.ChargedOnly, Dims: dims}, nil
}

func (d *DeviceConfig) buildPerfect(zone smear.Zone) (smear.Smearer, error) {
	genre, err := smear.ParseGenre(d.Genre)
	if err != nil {
		return nil, err
	}
	if len(d.Dims) == 0 {
		return nil, &smear.ConfigError{Msg: "perfect device: no dims configured"}
	}
	dims := make([]smear.Dim, 0, len(d.Dims))
	for _, name := range d.Dims {
		dim, err := parseSmearDim(name)
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}
	return &smear.PerfectDevice{Zone: zone, Genre: genre, ChargedOnly: d.ChargedOnly, Dims: dims}, nil
}

func (d *DeviceConfig) buildTracker(zone smear.Zone) (smear.Smearer, error) {
	thetaF, phiF, err := buildAngleFormulas(d.Smear)
	if err != nil {
		return nil, err
	}
	if d.Type == "radial-tracker" {
		t, err := smear.NewRadialTracker(d.InnerRadius, d.OuterRadius, d.ZMin, d.ZMax,
			d.FieldTesla, d.PointRes, d.NPlanes, d.RadiationLength)
		if err != nil {
			return nil, err
		}
		t.ThetaFormula, t.PhiFormula, t.Zone = thetaF, phiF, zone
		return t, nil
	}
	t, err := smear.NewPlanarTracker(d.ZFront, d.ZBack, d.RMin, d.RMax,
		d.FieldTesla, d.PointRes, d.NPlanes, d.RadiationLength)
	if err != nil {
		return nil, err
	}
	t.ThetaFormula, t.PhiFormula, t.Zone = thetaF, phiF, zone
	return t, nil
}

func (d *DeviceConfig) buildBrems(zone smear.Zone) (smear.Smearer, error) {
	var f *smear.Formula
	if d.Res != "" {
		var err error
		if f, err = smear.NewFormula(d.Res); err != nil {
			return nil, err
		}
	}
	b, err := smear.NewBremsstrahlung(d.RadFrac, d.KMin, d.KMax, f)
	if err != nil {
		return nil, err
	}
	b.Zone = zone
	return b, nil
}

func buildZone(accept map[string][]*float64) (smear.Zone, error) {
	zone := smear.NewZone()
	for _, name := range sortedKeys(accept) {
		dim, err := smear.ParseDim(name)
		if err != nil {
			return zone, err
		}
		bounds := accept[name]
		if len(bounds) != 2 {
			return zone, &smear.ConfigError{Msg: fmt.Sprintf("accept %s: want [low, high], got %d values", name, len(bounds))}
		}
		low, high := math.Inf(-1), math.Inf(1)
		if bounds[0] != nil {
			low = *bounds[0]
		}
		if bounds[1] != nil {
			high = *bounds[1]
		}
		if low > high {
			return zone, &smear.ConfigError{Msg: fmt.Sprintf("accept %s: low %g above high %g", name, low, high)}
		}
		zone = zone.With(dim, low, high)
	}
	return zone, nil
}

// buildDimFormulas parses a smear map in sorted key order. YAML maps carry
// no order and Go map iteration is randomized, but measurement order
// drives both the random-draw sequence and last-wins combination, so the
// order must be pinned.
func buildDimFormulas(smearMap map[string]string) ([]smear.DimFormula, error) {
	dims := make([]smear.DimFormula, 0, len(smearMap))
	for _, name := range sortedKeys(smearMap) {
		dim, err := parseSmearDim(name)
		if err != nil {
			return nil, err
		}
		f, err := smear.NewFormula(smearMap[name])
		if err != nil {
			return nil, err
		}
		dims = append(dims, smear.DimFormula{Dim: dim, Formula: f})
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i].Dim < dims[j].Dim })
	return dims, nil
}

// buildAngleFormulas extracts the optional theta and phi resolutions a
// tracker may report next to its momentum measurement.
func buildAngleFormulas(smearMap map[string]string) (thetaF, phiF *smear.Formula, err error) {
	for _, name := range sortedKeys(smearMap) {
		dim, err := smear.ParseDim(name)
		if err != nil {
			return nil, nil, err
		}
		f, err := smear.NewFormula(smearMap[name])
		if err != nil {
			return nil, nil, err
		}
		switch dim {
		case smear.DimTheta:
			thetaF = f
		case smear.DimPhi:
			phiF = f
		default:
			return nil, nil, &smear.ConfigError{Msg: fmt.Sprintf("tracker: cannot smear %s, only theta and phi resolutions may be configured", dim)}
		}
	}
	return thetaF, phiF, nil
}

func parseSmearDim(name string) (smear.Dim, error) {
	dim, err := smear.ParseDim(name)
	if err != nil {
		return 0, err
	}
	if dim >= smear.DimEta {
		return 0, &smear.ConfigError{Msg: fmt.Sprintf("%s is a cut-only dimension and cannot be measured", dim)}
	}
	return dim, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
