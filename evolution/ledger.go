package evolution

// LedgerEntry accumulates results for one genome across its instances.
type LedgerEntry struct {
	Spawns       int
	Outcomes     int
	TotalFitness float64
	BestFitness  float64
}

// MeanFitness returns the average fitness over recorded outcomes.
func (e LedgerEntry) MeanFitness() float64 {
	if e.Outcomes == 0 {
		return 0
	}
	return e.TotalFitness / float64(e.Outcomes)
}

// Ledger tracks per-genome results outside the immutable Genome values.
type Ledger struct {
	entries map[GenomeID]*LedgerEntry
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[GenomeID]*LedgerEntry)}
}

func (l *Ledger) entry(id GenomeID) *LedgerEntry {
	e, ok := l.entries[id]
	if !ok {
		e = &LedgerEntry{}
		l.entries[id] = e
	}
	return e
}

// Spawned counts one instance of the genome entering play.
func (l *Ledger) Spawned(id GenomeID) {
	l.entry(id).Spawns++
}

// Record adds one terminal outcome.
func (l *Ledger) Record(id GenomeID, fitness float64) {
	e := l.entry(id)
	if e.Outcomes == 0 || fitness > e.BestFitness {
		e.BestFitness = fitness
	}
	e.Outcomes++
	e.TotalFitness += fitness
}

// Entry returns a copy of the genome's entry.
func (l *Ledger) Entry(id GenomeID) (LedgerEntry, bool) {
	e, ok := l.entries[id]
	if !ok {
		return LedgerEntry{}, false
	}
	return *e, true
}

// Len returns the number of tracked genomes.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Retain drops entries whose ID is not in keep.
func (l *Ledger) Retain(keep []Genome) {
	live := make(map[GenomeID]struct{}, len(keep))
	for _, g := range keep {
		live[g.ID] = struct{}{}
	}
	for id := range l.entries {
		if _, ok := live[id]; !ok {
			delete(l.entries, id)
		}
	}
}

// Reset clears every entry.
func (l *Ledger) Reset() {
	clear(l.entries)
}
