package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"

	"github.com/pkg/profile"
	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/eic-tools/detsmear"
	"github.com/eic-tools/detsmear/config"
	"github.com/eic-tools/detsmear/mc"
	"github.com/eic-tools/detsmear/smear"
)

var (
	configPath = flag.String("config", "detector.yaml", "detector configuration file")
	eBeam      = flag.Float64("ebeam", 10, "lepton beam energy in GeV")
	pBeam      = flag.Float64("pbeam", 100, "hadron beam energy in GeV")
	pMax       = flag.Float64("maxp", 50, "momentum histogram upper edge")
	q2Max      = flag.Float64("maxq2", 100, "Q2 histogram upper edge")
	nBins      = flag.Int("nbins", 50, "number of histogram bins")
	workers    = flag.Int("workers", 4, "number of smearing workers")
	title      = flag.String("title", "", "plot title")
	prefix     = flag.String("prefix", "out", "output file prefix")
	doProfile  = flag.Bool("profile", false, "write a cpu profile")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <proio-input-files>...

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	if *doProfile {
		defer profile.Start().Stop()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	pl, err := cfg.Build()
	if err != nil {
		log.Fatal(err)
	}

	pPlot, _ := plot.New()
	pPlot.Title.Text = *title
	pPlot.X.Label.Text = "p (GeV)"
	pPlot.X.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}
	pPlot.Y.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}

	q2Plot, _ := plot.New()
	q2Plot.Title.Text = *title
	q2Plot.X.Label.Text = "Q^2 (GeV^2)"
	q2Plot.X.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}
	q2Plot.Y.Tick.Marker = detsmear.PreciseTicks{NSuggestedTicks: 5}

	for i, filename := range flag.Args() {
		events, err := readEvents(filename, pl.Finder.LeptonPDG)
		if err != nil {
			log.Fatal(err)
		}

		smeared, err := pl.Process(context.Background(), events, *workers)
		if err != nil {
			log.Fatal(err)
		}

		truePHist := hbook.NewH1D(*nBins, 0, *pMax)
		smearPHist := hbook.NewH1D(*nBins, 0, *pMax)
		trueQ2Hist := hbook.NewH1D(*nBins, 0, *q2Max)
		smearQ2Hist := hbook.NewH1D(*nBins, 0, *q2Max)

		var trueP, smearP []float64
		for j, ev := range events {
			out := smeared[j]
			for _, sp := range out.Particles {
				p, ok := sp.PMag()
				if !ok {
					continue
				}
				smearPHist.Fill(p, 1)
				smearP = append(smearP, p)

				truth := ev.Track(sp.OrigIndex)
				truePHist.Fill(truth.P(), 1)
				trueP = append(trueP, truth.P())
			}
			if out.Kin.Valid {
				smearQ2Hist.Fill(out.Kin.Q2, 1)
			}
			if q2, ok := trueQ2(ev, pl.Finder); ok {
				trueQ2Hist.Fill(q2, 1)
			}
		}

		lineColor := color.RGBA{A: 255}
		switch i {
		case 1:
			lineColor = color.RGBA{G: 255, A: 255}
		case 2:
			lineColor = color.RGBA{B: 255, A: 255}
		case 3:
			lineColor = color.RGBA{R: 255, B: 127, G: 127, A: 255}
		}

		addPair(pPlot, truePHist, smearPHist, lineColor, len(flag.Args()) == 1)
		addPair(q2Plot, trueQ2Hist, smearQ2Hist, lineColor, false)

		if len(trueP) > 0 {
			ratios := make([]float64, len(trueP))
			for k := range trueP {
				ratios[k] = smearP[k] / trueP[k]
			}
			fmt.Printf("%s: %d accepted observations, p_smeared/p_true mean %.4f stddev %.4f\n",
				filename, len(ratios), stat.Mean(ratios, nil), stat.StdDev(ratios, nil))
		}
	}

	if err := pPlot.Save(6*vg.Inch, 4*vg.Inch, *prefix+"_p.png"); err != nil {
		log.Fatal(err)
	}
	if err := q2Plot.Save(6*vg.Inch, 4*vg.Inch, *prefix+"_q2.png"); err != nil {
		log.Fatal(err)
	}
}

// addPair overlays the true histogram (filled-free dashed look via no fill)
// and the smeared one in the same color.
func addPair(p *plot.Plot, trueHist, smearHist *hbook.H1D, c color.RGBA, summary bool) {
	ht := hplot.NewH1D(trueHist)
	ht.FillColor = nil
	ht.LineStyle.Color = color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: 255}
	ht.Infos.Style = hplot.HInfoNone
	p.Add(ht)

	hs := hplot.NewH1D(smearHist)
	hs.FillColor = nil
	hs.LineStyle.Color = c
	if summary {
		hs.Infos.Style = hplot.HInfoSummary
	} else {
		hs.Infos.Style = hplot.HInfoNone
	}
	p.Add(hs)
}

// readEvents builds truth events from the GenStable entries of a proio
// file. The beams are not part of the stream, so synthetic beam records at
// the configured energies are prepended: the lepton along -z, the hadron
// along +z.
func readEvents(filename string, leptonPDG int) ([]*mc.Event, error) {
	reader, err := proio.Open(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var events []*mc.Event
	number := 0
	for event := range reader.ScanEvents() {
		ev := &mc.Event{Number: number}
		addBeams(ev, leptonPDG, *eBeam, *pBeam)

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
			p := mc.NewParticle(len(ev.Particles)+1, mc.StatusFinal, int(*part.Pdg), px, py, pz, e, m)
			p.Parent = 1
			ev.Particles = append(ev.Particles, p)
		}

		events = append(events, ev)
		number++
	}
	return events, nil
}

func addBeams(ev *mc.Event, leptonPDG int, eBeam, pBeam float64) {
	const mLepton = 0.000511
	const mHadron = 0.9382720813

	lepton := mc.NewParticle(1, mc.StatusBeam, leptonPDG,
		0, 0, -math.Sqrt(eBeam*eBeam-mLepton*mLepton), eBeam, mLepton)
	hadron := mc.NewParticle(2, mc.StatusBeam, 2212,
		0, 0, math.Sqrt(pBeam*pBeam-mHadron*mHadron), pBeam, mHadron)
	ev.Particles = append(ev.Particles, lepton, hadron)
	ev.S = smear.BeamParams{
		LeptonEnergy: eBeam, HadronEnergy: pBeam, HadronMass: mHadron, LeptonPDG: leptonPDG,
	}.S()
}

// trueQ2 computes the electron-method Q2 from the unsmeared record. The
// synthetic records built here carry no exchange boson, so only the beam
// lepton and its scattered partner are required.
func trueQ2(ev *mc.Event, finder mc.BeamFinder) (float64, bool) {
	beams, _ := finder.IdentifyBeams(ev)
	if beams.Lepton == nil || beams.ScatteredLepton == nil {
		return 0, false
	}
	sl := beams.ScatteredLepton
	return 2 * beams.Lepton.E() * sl.E() * (1 + math.Cos(sl.Theta())), true
}
