package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/eic-tools/detsmear"
	"github.com/eic-tools/detsmear/config"
	"github.com/eic-tools/detsmear/smear"
)

var (
	configPath = flag.String("config", "detector.yaml", "detector configuration file")
	dimName    = flag.String("dim", "E", "smeared dimension to plot the resolution of")
	pMin       = flag.Float64("minp", 0.5, "minimum momentum")
	pMax       = flag.Float64("maxp", 50, "maximum momentum")
	nPoints    = flag.Int("npoints", 100, "number of momentum samples")
	mass       = flag.Float64("mass", 0.13957061, "mass hypothesis in GeV")
	title      = flag.String("title", "", "plot title")
	output     = flag.String("output", "out.png", "output file")

	thetas detsmear.FloatArrayFlags
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options]

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	thetas.Array = []float64{1.5708}
	flag.Var(&thetas, "theta", "polar angle sample in radians (repeatable)")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 0 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	dim, err := smear.ParseDim(*dimName)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := cfg.Build(); err != nil {
		log.Fatal(err)
	}

	p, _ := plot.New()
	p.Title.Text = *title
	p.X.Label.Text = "p (GeV)"
	p.Y.Label.Text = fmt.Sprintf("sigma(%s)", dim)
	p.X.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}

	var lines []interface{}
	for i, dev := range cfg.Devices {
		expr, ok := resolutionFormula(dev, dim)
		if !ok {
			continue
		}
		f, err := smear.NewFormula(expr)
		if err != nil {
			log.Fatal(err)
		}

		for _, theta := range thetas.Array {
			pts := curve(f, theta)
			if len(pts) == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("device %d, theta %.2f", i, theta), pts)
		}
	}
	if len(lines) == 0 {
		log.Fatalf("no device in %s has a %s resolution formula", *configPath, dim)
	}

	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		log.Fatal(err)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, *output); err != nil {
		log.Fatal(err)
	}
}

// resolutionFormula returns the formula a device configures for the named
// dimension. Trackers derive their momentum resolution from geometry
// rather than a formula, so only their angular terms can be plotted here.
func resolutionFormula(dev config.DeviceConfig, dim smear.Dim) (string, bool) {
	if dev.Type == "bremsstrahlung" {
		if dim == smear.DimE && dev.Res != "" {
			return dev.Res, true
		}
		return "", false
	}
	for name, expr := range dev.Smear {
		if d, err := smear.ParseDim(name); err == nil && d == dim {
			return expr, true
		}
	}
	return "", false
}

// curve samples the formula over the momentum grid at fixed polar angle.
// Momenta where the formula is undefined are left out.
func curve(f *smear.Formula, theta float64) plotter.XYs {
	step := (*pMax - *pMin) / float64(*nPoints-1)
	pts := make(plotter.XYs, 0, *nPoints)
	for i := 0; i < *nPoints; i++ {
		pMag := *pMin + float64(i)*step
		sigma, err := f.Eval(smear.KinFor(pMag, theta, *mass))
		if err != nil {
			continue
		}
		pts = append(pts, struct{ X, Y float64 }{pMag, sigma})
	}
	return pts
}
