package mc

// Event is one true generator event: an ordered particle record plus the
// event-level scalars the generator reported. Particle indices stored on
// the particles (Index, Parent, Daughter) are 1-based generator indices;
// Track converts them to record positions.
type Event struct {
	Number  int
	Process int

	Particles []*Particle

	// Generator-level DIS invariants, when the generator provides them.
	TrueQ2, TrueX, TrueY, TrueW2 float64

	// S is the squared center-of-mass energy of the beam system.
	S float64
}

// NTracks returns the number of particles in the record.
func (ev *Event) NTracks() int { return len(ev.Particles) }

// Track returns the particle with 1-based generator index i, or nil when
// the index is out of range.
func (ev *Event) Track(i int) *Particle {
	if i < 1 || i > len(ev.Particles) {
		return nil
	}
	return ev.Particles[i-1]
}

// ParentOf returns the parent of p, or nil when p has none or the stored
// index does not resolve.
func (ev *Event) ParentOf(p *Particle) *Particle {
	if p.Parent < 1 {
		return nil
	}
	return ev.Track(p.Parent)
}

// NChildren returns the number of children recorded for p.
func (ev *Event) NChildren(p *Particle) int {
	switch {
	case p.Daughter < 1:
		return 0
	case p.LDaughter < p.Daughter:
		return 1
	default:
		return p.LDaughter - p.Daughter + 1
	}
}

// Child returns the i-th child of p (0-based over the daughter range), or
// nil when absent.
func (ev *Event) Child(p *Particle, i int) *Particle {
	if p.Daughter < 1 || i < 0 || i >= ev.NChildren(p) {
		return nil
	}
	return ev.Track(p.Daughter + i)
}

// HasChild reports whether any child of p carries the given species code.
func (ev *Event) HasChild(p *Particle, pdg int) bool {
	for i := 0; i < ev.NChildren(p); i++ {
		if c := ev.Child(p, i); c != nil && c.PDG == pdg {
			return true
		}
	}
	return false
}

// FinalState returns the stable final-state particles in record order,
// excluding beam remnants and partons as classified by f.
func (ev *Event) FinalState(f BeamFinder) []*Particle {
	var out []*Particle
	for _, p := range ev.Particles {
		if p.Status != StatusFinal || f.Skip(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
