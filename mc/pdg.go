package mc

// ParticleData resolves static particle properties from a species code.
// Implementations must be safe for concurrent use; the smearing engine
// consults them for every particle of every event.
type ParticleData interface {
	// Mass returns the particle mass in GeV, 0 when the species is unknown.
	Mass(pdg int) float64
	// Charge returns the electric charge in units of e, 0 when unknown.
	Charge(pdg int) float64
}

type pdgProps struct {
	mass   float64
	charge float64
}

// Table is an in-memory species-property lookup. It is constructed once
// per run and injected wherever properties are needed, so tests can supply
// isolated instances.
type Table struct {
	props map[int]pdgProps
}

// PDG returns a fresh table covering the species the smearing engine
// distinguishes. Antiparticles resolve to their particle's entry with the
// charge sign flipped; nuclei (10-digit ion codes) are derived from A and
// Z; anything else falls back to mass 0, charge 0.
func PDG() *Table {
	return &Table{props: map[int]pdgProps{
		11:   {0.000510998946, -1}, // e-
		12:   {0, 0},               // nu_e
		13:   {0.1056583745, -1},   // mu-
		14:   {0, 0},               // nu_mu
		15:   {1.77686, -1},        // tau-
		16:   {0, 0},               // nu_tau
		22:   {0, 0},               // photon
		111:  {0.1349770, 0},       // pi0
		211:  {0.13957061, 1},      // pi+
		221:  {0.547862, 0},        // eta
		130:  {0.497611, 0},        // K0L
		310:  {0.497611, 0},        // K0S
		311:  {0.497611, 0},        // K0
		321:  {0.493677, 1},        // K+
		411:  {1.86965, 1},         // D+
		421:  {1.86483, 0},         // D0
		2112: {0.9395654133, 0},    // n
		2212: {0.9382720813, 1},    // p
		3112: {1.197449, -1},       // Sigma-
		3122: {1.115683, 0},        // Lambda
		3222: {1.18937, 1},         // Sigma+
		3312: {1.32171, -1},        // Xi-
		3322: {1.31486, 0},         // Xi0
		3334: {1.67245, -1},        // Omega-
	}}
}

// nucleonMass is the average nucleon mass used for ion codes.
const nucleonMass = 0.9314941

func (t *Table) lookup(pdg int) (pdgProps, float64) {
	sign := 1.0
	if pdg < 0 {
		pdg = -pdg
		sign = -1
	}
	if pdg > 1000000000 {
		// Ion code 10LZZZAAAI.
		z := (pdg / 10000) % 1000
		a := (pdg / 10) % 1000
		return pdgProps{mass: float64(a) * nucleonMass, charge: float64(z)}, sign
	}
	p, ok := t.props[pdg]
	if !ok {
		return pdgProps{}, sign
	}
	return p, sign
}

func (t *Table) Mass(pdg int) float64 {
	p, _ := t.lookup(pdg)
	return p.mass
}

func (t *Table) Charge(pdg int) float64 {
	p, sign := t.lookup(pdg)
	return sign * p.charge
}
