package mc

// BeamFinder classifies particles of a DIS event record by their role:
// beam lepton, beam hadron, exchange boson, scattered lepton. It needs to
// know the species of the lepton beam; everything else follows from status
// codes and species.
type BeamFinder struct {
	// LeptonPDG is the species code of the lepton beam (e.g. 11 for an
	// electron beam).
	LeptonPDG int
}

// Beams collects the four distinguished particles of a DIS event. Any of
// the fields may be nil when the record does not contain that particle.
// Finding a scattered hadron beam is not supported.
type Beams struct {
	Lepton          *Particle
	Hadron          *Particle
	Boson           *Particle
	ScatteredLepton *Particle
}

// IsBeamLepton reports whether p is the incident lepton beam particle.
func (f BeamFinder) IsBeamLepton(p *Particle) bool {
	return p.Status == StatusBeam && p.PDG == f.LeptonPDG && p.Parent == 0
}

// IsBeamHadron reports whether p is the incident hadron beam particle.
// Protons, neutrons, deuterons and heavier ions qualify.
func (f BeamFinder) IsBeamHadron(p *Particle) bool {
	if p.Status != StatusBeam || p.Parent != 0 {
		return false
	}
	return p.PDG == 2212 || p.PDG == 2112 || p.PDG > 1000000000
}

// IsVirtualPhoton reports whether p is the exchanged boson.
func (f BeamFinder) IsVirtualPhoton(p *Particle) bool {
	return p.Status == StatusBeam && (p.PDG == 22 || p.PDG == 23)
}

// IsScatteredLepton reports whether p is a scattered-lepton candidate: a
// stable particle of the beam-lepton species.
func (f BeamFinder) IsScatteredLepton(p *Particle) bool {
	return p.Status == StatusFinal && p.PDG == f.LeptonPDG
}

// Skip reports whether consumers assembling a detectable final state
// should ignore p: initial/intermediate entries, quarks and other partons
// (|PDG| < 10), gluons, and string/cluster fragments.
func (f BeamFinder) Skip(p *Particle) bool {
	if p.Status == StatusBeam {
		return true
	}
	abs := p.PDG
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 10: // quarks, leptons are >= 11
		return true
	case abs == 21: // gluon
		return true
	case abs >= 91 && abs <= 94: // fragmentation pseudo-particles
		return true
	}
	return false
}

// IdentifyBeams scans the record for the beam lepton, beam hadron,
// exchange boson and scattered lepton, taking the first match for each.
// When several scattered-lepton candidates exist and one is a direct child
// of the beam lepton, that one wins. The second return value is false when
// any of the four is missing.
func (f BeamFinder) IdentifyBeams(ev *Event) (Beams, bool) {
	var b Beams
	for _, p := range ev.Particles {
		switch {
		case b.Lepton == nil && f.IsBeamLepton(p):
			b.Lepton = p
		case b.Hadron == nil && f.IsBeamHadron(p):
			b.Hadron = p
		case b.Boson == nil && f.IsVirtualPhoton(p):
			b.Boson = p
		case f.IsScatteredLepton(p):
			if b.ScatteredLepton == nil {
				b.ScatteredLepton = p
				continue
			}
			if b.Lepton != nil && p.Parent == b.Lepton.Index &&
				b.ScatteredLepton.Parent != b.Lepton.Index {
				b.ScatteredLepton = p
			}
		}
	}
	ok := b.Lepton != nil && b.Hadron != nil && b.Boson != nil && b.ScatteredLepton != nil
	return b, ok
}
