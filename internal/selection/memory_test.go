package selection

import (
	"errors"
	"testing"

	"github.com/strucbio/motifq/internal/motif"
)

func histEntry(id, chain string, seq int, comp string) motif.Entry {
	return motif.Entry{
		ID: motif.EntryID(id),
		Locus: motif.Locus{
			ModelID: "1ABC",
			Elements: []motif.Element{
				{ChainID: chain, SeqID: seq, CompID: comp},
			},
		},
	}
}

func entryIDs(t *testing.T, h History) []string {
	t.Helper()
	entries, err := h.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = string(e.ID)
	}
	return ids
}

func assertOrder(t *testing.T, h History, want ...string) {
	t.Helper()
	got := entryIDs(t, h)
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s (full order %v)", i, want[i], got[i], got)
		}
	}
}

func TestMemoryHistoryAddAssignsID(t *testing.T) {
	h := NewMemoryHistory()

	id := h.Add(motif.Entry{Locus: motif.Locus{ModelID: "1ABC"}})
	if id == "" {
		t.Fatal("expected an assigned id")
	}

	kept := h.Add(histEntry("fixed", "A", 1, "ALA"))
	if kept != "fixed" {
		t.Fatalf("expected caller id to be kept, got %s", kept)
	}
}

func TestMemoryHistoryMove(t *testing.T) {
	h := NewMemoryHistory()
	h.Add(histEntry("a", "A", 1, "ALA"))
	h.Add(histEntry("b", "A", 2, "SER"))
	h.Add(histEntry("c", "A", 3, "GLY"))

	if err := h.Move("c", MoveUp, 0); err != nil {
		t.Fatalf("move up: %v", err)
	}
	assertOrder(t, h, "a", "c", "b")

	if err := h.Move("a", MoveDown, 0); err != nil {
		t.Fatalf("move down: %v", err)
	}
	assertOrder(t, h, "c", "a", "b")
}

func TestMemoryHistoryMoveAtEdgesIsNoOp(t *testing.T) {
	h := NewMemoryHistory()
	h.Add(histEntry("a", "A", 1, "ALA"))
	h.Add(histEntry("b", "A", 2, "SER"))

	if err := h.Move("a", MoveUp, 0); err != nil {
		t.Fatalf("move first up: %v", err)
	}
	if err := h.Move("b", MoveDown, 0); err != nil {
		t.Fatalf("move last down: %v", err)
	}
	assertOrder(t, h, "a", "b")
}

func TestMemoryHistoryMoveHonorsWindow(t *testing.T) {
	h := NewMemoryHistory()
	h.Add(histEntry("a", "A", 1, "ALA"))
	h.Add(histEntry("b", "A", 2, "SER"))
	h.Add(histEntry("c", "A", 3, "GLY"))

	// With a window of two, the second entry cannot move down and the third
	// cannot move at all.
	if err := h.Move("b", MoveDown, 2); err != nil {
		t.Fatalf("move at window edge: %v", err)
	}
	if err := h.Move("c", MoveUp, 2); err != nil {
		t.Fatalf("move outside window: %v", err)
	}
	assertOrder(t, h, "a", "b", "c")
}

func TestMemoryHistoryMoveUnknownEntry(t *testing.T) {
	h := NewMemoryHistory()
	h.Add(histEntry("a", "A", 1, "ALA"))

	err := h.Move("missing", MoveUp, 0)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestMemoryHistoryRemove(t *testing.T) {
	h := NewMemoryHistory()
	h.Add(histEntry("a", "A", 1, "ALA"))
	h.Add(histEntry("b", "A", 2, "SER"))

	if err := h.Remove("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	assertOrder(t, h, "b")

	if err := h.Remove("a"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestMemoryHistoryChangedSignals(t *testing.T) {
	h := NewMemoryHistory()
	ch := h.Changed()

	h.Add(histEntry("a", "A", 1, "ALA"))
	select {
	case <-ch:
	default:
		t.Fatal("expected a change signal after Add")
	}

	// Signals coalesce: two mutations without a read leave one signal.
	h.Add(histEntry("b", "A", 2, "SER"))
	h.Add(histEntry("c", "A", 3, "GLY"))
	select {
	case <-ch:
	default:
		t.Fatal("expected a change signal after further mutations")
	}
	select {
	case <-ch:
		t.Fatal("expected coalesced signals, got a second one")
	default:
	}
}

func TestParseDirection(t *testing.T) {
	cases := []struct {
		input   string
		want    MoveDirection
		wantErr bool
	}{
		{"up", MoveUp, false},
		{"DOWN", MoveDown, false},
		{" Up ", MoveUp, false},
		{"sideways", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseDirection(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDirection(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDirection(%q): %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDirection(%q) = %v, expected %v", tc.input, got, tc.want)
		}
	}
}
