package smear

import (
	"context"
	"math/rand"
	"sync"

	"github.com/eic-tools/detsmear/mc"
)

// Pipeline drives a Detector over whole events: it copies event scalars,
// smears every detectable particle, keeps accepted observations in
// generator order, and reconstructs the event kinematics. The pipeline and
// everything it references are read-only during processing, so one
// Pipeline serves any number of concurrent workers.
type Pipeline struct {
	Detector *Detector
	Finder   mc.BeamFinder
	Props    mc.ParticleData

	// Seed fixes the random stream. Each event derives its own stream
	// from (Seed, event number), so results are bit-identical for a given
	// seed no matter how events are scheduled over workers.
	Seed int64
}

// NewPipeline wires a pipeline with the standard species table.
func NewPipeline(det *Detector, finder mc.BeamFinder, seed int64) *Pipeline {
	return &Pipeline{Detector: det, Finder: finder, Props: mc.PDG(), Seed: seed}
}

// splitmix64 finalizer; decorrelates per-event streams derived from
// consecutive event numbers.
func mix64(v uint64) int64 {
	v += 0x9e3779b97f4a7c15
	v = (v ^ (v >> 30)) * 0xbf58476d1ce4e5b9
	v = (v ^ (v >> 27)) * 0x94d049bb133111eb
	return int64(v ^ (v >> 31))
}

func (pl *Pipeline) eventRand(number int) *rand.Rand {
	return rand.New(rand.NewSource(mix64(uint64(pl.Seed) ^ uint64(number)<<1)))
}

// ProcessEvent smears one true event. It is the sole entry point for
// callers feeding events from a source; the input is never modified.
func (pl *Pipeline) ProcessEvent(ev *mc.Event) *SmearedEvent {
	return pl.processEvent(pl.eventRand(ev.Number), ev)
}

func (pl *Pipeline) processEvent(rng *rand.Rand, ev *mc.Event) *SmearedEvent {
	out := &SmearedEvent{
		Number: ev.Number,
		S:      ev.S,
		Method: pl.Detector.Method,
	}

	beams, _ := pl.Finder.IdentifyBeams(ev)

	for _, p := range ev.Particles {
		if p.Status != mc.StatusFinal || pl.Finder.Skip(p) {
			continue
		}
		sp, accepted := pl.Detector.Smear(rng, p, pl.Props)
		if !accepted {
			continue
		}
		out.Particles = append(out.Particles, sp)
	}

	out.Kin = pl.reconstruct(out, beams)
	return out
}

func (pl *Pipeline) reconstruct(out *SmearedEvent, beams mc.Beams) Kinematics {
	var lepton *SmearedParticle
	hadrons := make([]*SmearedParticle, 0, len(out.Particles))
	for _, sp := range out.Particles {
		if beams.ScatteredLepton != nil && sp.OrigIndex == beams.ScatteredLepton.Index {
			lepton = sp
			continue
		}
		hadrons = append(hadrons, sp)
	}
	return Reconstruct(pl.Detector.Method, lepton, hadrons, pl.Props, BeamsOf(beams))
}

// Process smears a batch of independent events over the given number of
// workers, writing each result to the slot matching its input position.
// Cancellation is honored between events, never mid-event; on
// cancellation the slots processed so far are returned together with the
// context's error.
func (pl *Pipeline) Process(ctx context.Context, events []*mc.Event, workers int) ([]*SmearedEvent, error) {
	out := make([]*SmearedEvent, len(events))
	if workers < 1 {
		workers = 1
	}

	idx := make(chan int)
	go func() {
		defer close(idx)
		for i := range events {
			select {
			case <-ctx.Done():
				return
			case idx <- i:
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i] = pl.ProcessEvent(events[i])
			}
		}()
	}
	wg.Wait()

	return out, ctx.Err()
}
