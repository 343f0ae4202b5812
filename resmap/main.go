package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/eic-tools/detsmear"
	"github.com/eic-tools/detsmear/config"
	"github.com/eic-tools/detsmear/mc"
	"github.com/eic-tools/detsmear/smear"
)

var (
	configPath = flag.String("config", "detector.yaml", "detector configuration file")
	eBeam      = flag.Float64("ebeam", 10, "lepton beam energy in GeV")
	pBeam      = flag.Float64("pbeam", 100, "hadron beam energy in GeV")
	pTMin      = flag.Float64("minpt", 0.5, "minimum transverse momentum")
	pTMax      = flag.Float64("maxpt", 30, "maximum transverse momentum")
	etaLimit   = flag.Float64("etalimit", 4, "maximum absolute value of eta")
	resLimit   = flag.Float64("reslimit", 0.1, "maximum momentum resolution in the color map")
	nBinsPT    = flag.Int("nbinspt", 10, "number of bins in transverse momentum")
	nBinsEta   = flag.Int("nbinseta", 10, "number of bins in eta")
	workers    = flag.Int("workers", 4, "number of smearing workers")
	title      = flag.String("title", "", "plot title")
	output     = flag.String("output", "out.png", "output file")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <proio-input-file>

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 1 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	pl, err := cfg.Build()
	if err != nil {
		log.Fatal(err)
	}

	p, _ := plot.New()
	p.Title.Text = *title
	p.X.Label.Text = "eta"
	p.Y.Label.Text = "p_T"
	p.X.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}

	resGrid := NewResGrid(*nBinsEta, -*etaLimit, *etaLimit, *nBinsPT, *pTMin, *pTMax)

	events, err := readEvents(flag.Arg(0), pl.Finder.LeptonPDG)
	if err != nil {
		log.Fatal(err)
	}
	smeared, err := pl.Process(context.Background(), events, *workers)
	if err != nil {
		log.Fatal(err)
	}

	for i, ev := range events {
		for _, sp := range smeared[i].Particles {
			pSmear, ok := sp.PMag()
			if !ok {
				continue
			}
			truth := ev.Track(sp.OrigIndex)
			if truth.Pt() < *pTMin {
				continue
			}
			resGrid.Fill(truth.Eta(), truth.Pt(), pSmear/truth.P())
		}
	}

	img := vgimg.New(670, 400)
	dc := draw.New(img)
	dc0 := draw.Crop(dc, 0, -70, 0, 0)
	dc1 := draw.Crop(dc, 620, 0, 0, 0)

	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(0)
	colorMap.SetMax(*resLimit)
	pal := colorMap.Palette(1000)
	heatMap := plotter.NewHeatMap(resGrid, pal)
	heatMap.Min = 0
	heatMap.Max = *resLimit
	p.Add(heatMap)

	p.Draw(dc0)

	p, _ = plot.New()

	colorBar := &plotter.ColorBar{ColorMap: colorMap}
	colorBar.Vertical = true
	p.Add(colorBar)
	p.HideX()
	p.Y.Padding = 0

	p.Draw(dc1)

	w, err := os.Create(*output)
	if err != nil {
		log.Panic(err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(w); err != nil {
		log.Panic(err)
	}
}

func readEvents(filename string, leptonPDG int) ([]*mc.Event, error) {
	reader, err := proio.Open(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	const mLepton = 0.000511
	const mHadron = 0.9382720813

	var events []*mc.Event
	number := 0
	for event := range reader.ScanEvents() {
		ev := &mc.Event{Number: number}
		lepton := mc.NewParticle(1, mc.StatusBeam, leptonPDG,
			0, 0, -math.Sqrt(*eBeam**eBeam-mLepton*mLepton), *eBeam, mLepton)
		hadron := mc.NewParticle(2, mc.StatusBeam, 2212,
			0, 0, math.Sqrt(*pBeam**pBeam-mHadron*mHadron), *pBeam, mHadron)
		ev.Particles = append(ev.Particles, lepton, hadron)
		ev.S = smear.BeamParams{
			LeptonEnergy: *eBeam, HadronEnergy: *pBeam, HadronMass: mHadron, LeptonPDG: leptonPDG,
		}.S()

		for _, id := range event.TaggedEntries("GenStable") {
			part, ok := event.GetEntry(id).(*eic.Particle)
			if !ok {
				continue
			}
			px := float64(*part.P.X)
			py := float64(*part.P.Y)
			pz := float64(*part.P.Z)
			m := float64(*part.Mass)
			e := math.Sqrt(px*px + py*py + pz*pz + m*m)
			mp := mc.NewParticle(len(ev.Particles)+1, mc.StatusFinal, int(*part.Pdg), px, py, pz, e, m)
			mp.Parent = 1
			ev.Particles = append(ev.Particles, mp)
		}

		events = append(events, ev)
		number++
	}
	return events, nil
}

// ResGrid aggregates the standard deviation of smeared/true momentum per
// (eta, pT) cell, for display as a heat map.
type ResGrid struct {
	hCount, hV, hV2 *hbook.H2D
	nBinsX, nBinsY  int
	xLow, xHigh     float64
	yLow, yHigh     float64
}

func NewResGrid(nBinsX int, xLow, xHigh float64, nBinsY int, yLow, yHigh float64) *ResGrid {
	return &ResGrid{
		hbook.NewH2D(nBinsX, xLow, xHigh, nBinsY, yLow, yHigh),
		hbook.NewH2D(nBinsX, xLow, xHigh, nBinsY, yLow, yHigh),
		hbook.NewH2D(nBinsX, xLow, xHigh, nBinsY, yLow, yHigh),
		nBinsX, nBinsY,
		xLow, xHigh,
		yLow, yHigh,
	}
}

func (g *ResGrid) Fill(x, y, z float64) {
	g.hCount.Fill(x, y, 1)
	g.hV.Fill(x, y, z)
	g.hV2.Fill(x, y, z*z)
}

func (g *ResGrid) Dims() (int, int) {
	return g.nBinsX, g.nBinsY
}

func (g *ResGrid) Z(i, j int) float64 {
	n := g.hCount.GridXYZ().Z(i, j)
	if n < 3 {
		return 1
	}
	mean := g.hV.GridXYZ().Z(i, j) / n
	mean2 := g.hV2.GridXYZ().Z(i, j) / n

	return math.Sqrt(mean2 - mean*mean)
}

func (g *ResGrid) X(i int) float64 {
	return g.hCount.GridXYZ().X(i)
}

func (g *ResGrid) Y(j int) float64 {
	return g.hCount.GridXYZ().Y(j)
}
