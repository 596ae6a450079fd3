package motif

// Motif size limits. A query is submittable once MinMotifSize picks exist;
// everything past the first MaxMotifSize history entries is ignored, not an
// error. DisplayCap bounds how many history entries surrounding UIs show and
// is the cap passed to the history collaborator when reordering.
const (
	MinMotifSize = 3
	MaxMotifSize = 10
	DisplayCap   = 10
)

// PickedResidue is the per-pick state owned by the tracker: the pick's native
// residue type and its exchange set. The exchange set is insertion-ordered
// and seeded with the native type; an empty set is legal and means "no
// exchange filter" for that position.
type PickedResidue struct {
	Native    string
	exchanges []string
}

func newPickedResidue(native string) *PickedResidue {
	p := &PickedResidue{Native: native}
	if native != "" {
		p.exchanges = append(p.exchanges, native)
	}
	return p
}

// Exchanges returns the allowed residue types in insertion order.
func (p *PickedResidue) Exchanges() []string {
	return append([]string(nil), p.exchanges...)
}

// Toggle adds code to the exchange set if absent and removes it otherwise.
// Toggling the same code twice restores the original set.
func (p *PickedResidue) Toggle(code string) {
	for i, c := range p.exchanges {
		if c == code {
			p.exchanges = append(p.exchanges[:i], p.exchanges[i+1:]...)
			return
		}
	}
	p.exchanges = append(p.exchanges, code)
}

// Tracker keeps one PickedResidue per live selection-history entry, keyed by
// the entry's stable id. It never mutates the history itself; callers
// delegate moves and removals to the history collaborator and re-Sync.
// Not safe for concurrent use: all mutation happens from a single event
// handler at a time.
type Tracker struct {
	picks map[EntryID]*PickedResidue
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{picks: make(map[EntryID]*PickedResidue)}
}

// Sync reconciles tracked picks with the given history snapshot. Entries seen
// for the first time get a fresh pick seeded with their native residue type,
// entries already tracked keep their pick untouched, and picks whose entry no
// longer appears in the snapshot are dropped. A dropped and later re-added id
// starts over with a fresh seed; old exchange sets are never resurrected.
// Reports whether anything changed so callers can fire refresh notifications.
func (t *Tracker) Sync(entries []Entry) bool {
	changed := false
	live := make(map[EntryID]struct{}, len(entries))
	for _, e := range entries {
		live[e.ID] = struct{}{}
		if _, ok := t.picks[e.ID]; ok {
			continue
		}
		t.picks[e.ID] = newPickedResidue(e.NativeType())
		changed = true
	}
	for id := range t.picks {
		if _, ok := live[id]; !ok {
			delete(t.picks, id)
			changed = true
		}
	}
	return changed
}

// Pick returns the tracked state for an entry id.
func (t *Tracker) Pick(id EntryID) (*PickedResidue, bool) {
	p, ok := t.picks[id]
	return p, ok
}

// ToggleExchange flips code in the entry's exchange set. Returns false when
// the id is not tracked.
func (t *Tracker) ToggleExchange(id EntryID, code string) bool {
	p, ok := t.picks[id]
	if !ok {
		return false
	}
	p.Toggle(code)
	return true
}

// Exchanges returns the exchange set for an entry id, nil when untracked or
// empty. The returned slice is a copy.
func (t *Tracker) Exchanges(id EntryID) []string {
	p, ok := t.picks[id]
	if !ok {
		return nil
	}
	return p.Exchanges()
}

// Restore installs a pick with a previously persisted exchange set, bypassing
// the native-type seeding. Only state stores should call this.
func (t *Tracker) Restore(id EntryID, native string, exchanges []string) {
	t.picks[id] = &PickedResidue{
		Native:    native,
		exchanges: append([]string(nil), exchanges...),
	}
}

// Len returns the number of tracked picks.
func (t *Tracker) Len() int { return len(t.picks) }

// Clear drops every tracked pick.
func (t *Tracker) Clear() {
	t.picks = make(map[EntryID]*PickedResidue)
}

// Visible returns at most DisplayCap entries of the snapshot, in history
// order.
func Visible(entries []Entry) []Entry {
	if len(entries) > DisplayCap {
		return entries[:DisplayCap]
	}
	return entries
}

// CanSubmit reports whether a history of n picks is submittable.
func CanSubmit(n int) bool { return n >= MinMotifSize }
