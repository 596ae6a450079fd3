// Package selection provides the selection-history collaborators motifq
// consumes: the interchange document a molecular viewer exports, a
// file-backed history over that document, an in-memory history for tests and
// embedders, and a change watcher. The history is externally owned; motifq
// only ever mutates it through the History interface.
package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/strucbio/motifq/internal/motif"
)

// ErrEntryNotFound is returned when an operation names an entry id the
// history does not contain.
var ErrEntryNotFound = errors.New("selection entry not found")

// MoveDirection shifts an entry one position within the visible window.
type MoveDirection int8

const (
	MoveUp   MoveDirection = -1
	MoveDown MoveDirection = 1
)

func (d MoveDirection) String() string {
	switch d {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	default:
		return fmt.Sprintf("MoveDirection(%d)", int8(d))
	}
}

// ParseDirection maps the CLI spelling of a direction to its value.
func ParseDirection(s string) (MoveDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return MoveUp, nil
	case "down":
		return MoveDown, nil
	default:
		return 0, fmt.Errorf("direction must be up or down, got %q", s)
	}
}

// History is the ordered record of user picks. Order is insertion order of
// picks, not spatial order. Implementations own their storage; callers never
// mutate returned slices.
type History interface {
	// Entries returns the current snapshot in history order.
	Entries() ([]motif.Entry, error)

	// Move shifts the entry one position in the given direction, within the
	// first cap entries (cap <= 0 means unbounded). Moves that would leave
	// the window are no-ops.
	Move(id motif.EntryID, dir MoveDirection, cap int) error

	// Remove deletes the entry from the history.
	Remove(id motif.EntryID) error
}

// reorder shifts the entry one position in place and reports whether the
// order changed. Shared by the history implementations so their window
// semantics stay identical.
func reorder(entries []motif.Entry, id motif.EntryID, dir MoveDirection, cap int) (bool, error) {
	i := -1
	for idx := range entries {
		if entries[idx].ID == id {
			i = idx
			break
		}
	}
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	limit := len(entries)
	if cap > 0 && cap < limit {
		limit = cap
	}
	j := i + int(dir)
	if i >= limit || j < 0 || j >= limit {
		return false, nil
	}

	entries[i], entries[j] = entries[j], entries[i]
	return true, nil
}

// removeEntry deletes the entry from the slice, preserving order.
func removeEntry(entries []motif.Entry, id motif.EntryID) ([]motif.Entry, error) {
	for i := range entries {
		if entries[i].ID == id {
			return append(entries[:i], entries[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}
