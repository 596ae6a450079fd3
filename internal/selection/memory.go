package selection

import (
	"sync"

	"github.com/google/uuid"

	"github.com/strucbio/motifq/internal/motif"
)

// MemoryHistory is an in-process History. It assigns ids to new entries and
// signals a change channel after every mutation, which makes it the natural
// backing for tests and for embedders that drive the workbench directly.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []motif.Entry
	subs    []chan struct{}
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Add appends a pick to the history and returns its id. Entries without an
// id are assigned a fresh UUID; ids provided by the caller are kept so
// round-trips through an interchange document stay stable.
func (h *MemoryHistory) Add(e motif.Entry) motif.EntryID {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e.ID == "" {
		e.ID = motif.EntryID(uuid.New().String())
	}
	h.entries = append(h.entries, e)
	h.notifyLocked()
	return e.ID
}

func (h *MemoryHistory) Entries() ([]motif.Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]motif.Entry, len(h.entries))
	copy(out, h.entries)
	return out, nil
}

func (h *MemoryHistory) Move(id motif.EntryID, dir MoveDirection, cap int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed, err := reorder(h.entries, id, dir, cap)
	if err != nil {
		return err
	}
	if changed {
		h.notifyLocked()
	}
	return nil
}

func (h *MemoryHistory) Remove(id motif.EntryID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := removeEntry(h.entries, id)
	if err != nil {
		return err
	}
	h.entries = entries
	h.notifyLocked()
	return nil
}

// Clear drops every entry.
func (h *MemoryHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return
	}
	h.entries = nil
	h.notifyLocked()
}

// Changed returns a channel that receives a signal after each mutation.
// Signals coalesce while the receiver is busy; the channel never blocks a
// mutation.
func (h *MemoryHistory) Changed() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan struct{}, 1)
	h.subs = append(h.subs, ch)
	return ch
}

func (h *MemoryHistory) notifyLocked() {
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
