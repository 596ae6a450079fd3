package motifq

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type recordingTarget struct {
	calls []MotifChangeSet
	fail  bool
}

func (r *recordingTarget) ApplyMotifChanges(ctx context.Context, changes MotifChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}
	if r.fail {
		return errors.New("target unavailable")
	}
	r.calls = append(r.calls, changes)
	return nil
}

func (r *recordingTarget) reset() {
	r.calls = nil
}

func TestSaveMotifDispatchesChanges(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)
	addSubmittablePicks(t, w, history)

	target := &recordingTarget{}
	w.RegisterSyncTarget(target)

	saved, err := w.SaveMotif(ctx, "catalytic triad", "his-asp-ser")
	if err != nil {
		t.Fatalf("save motif: %v", err)
	}
	if saved.ID == "" || saved.ResidueCount != 3 {
		t.Fatalf("unexpected saved motif: %+v", saved)
	}
	if !strings.Contains(saved.QueryJSON, `"residue_ids"`) {
		t.Fatalf("expected query json to carry selectors, got %s", saved.QueryJSON)
	}

	if len(target.calls) != 1 {
		t.Fatalf("expected 1 change set, got %d", len(target.calls))
	}
	first := target.calls[0]
	if len(first.Upserts) != 1 || first.Upserts[0].ID != saved.ID {
		t.Fatalf("expected upsert for %s, got %+v", saved.ID, first)
	}
	if len(first.Deletions) != 0 {
		t.Fatalf("expected no deletions on save, got %v", first.Deletions)
	}

	target.reset()

	if err := w.DeleteMotif(ctx, saved.ID); err != nil {
		t.Fatalf("delete motif: %v", err)
	}
	if len(target.calls) != 1 {
		t.Fatalf("expected 1 change set for delete, got %d", len(target.calls))
	}
	removal := target.calls[0]
	if len(removal.Deletions) != 1 || removal.Deletions[0] != saved.ID {
		t.Fatalf("expected deletion of %s, got %+v", saved.ID, removal)
	}

	motifs, err := w.ListMotifs(ctx)
	if err != nil {
		t.Fatalf("list motifs: %v", err)
	}
	if len(motifs) != 0 {
		t.Fatalf("expected empty catalog, got %d motifs", len(motifs))
	}
}

func TestSaveMotifStaysSavedWhenTargetFails(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)
	addSubmittablePicks(t, w, history)

	w.RegisterSyncTarget(&recordingTarget{fail: true})

	saved, err := w.SaveMotif(ctx, "zinc finger", "")
	if err != nil {
		t.Fatalf("save motif: %v", err)
	}

	motifs, err := w.ListMotifs(ctx)
	if err != nil {
		t.Fatalf("list motifs: %v", err)
	}
	if len(motifs) != 1 || motifs[0].ID != saved.ID {
		t.Fatalf("expected motif to stay saved, got %+v", motifs)
	}
}

func TestSaveMotifValidation(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)

	if _, err := w.SaveMotif(ctx, "", ""); err == nil {
		t.Fatal("expected error for empty name")
	}

	history.Add(pickEntry("e1", "1ABC", "A", 5, "HIS"))
	if _, err := w.SyncPicks(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := w.SaveMotif(ctx, "too small", ""); err == nil {
		t.Fatal("expected error with a single pick")
	}
	if countRows(t, w.db, "motifs") != 0 {
		t.Fatal("expected no motif rows after failed saves")
	}
}

func TestSaveMotifDuplicateName(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)
	addSubmittablePicks(t, w, history)

	if _, err := w.SaveMotif(ctx, "catalytic triad", ""); err != nil {
		t.Fatalf("save motif: %v", err)
	}
	_, err := w.SaveMotif(ctx, "catalytic triad", "second")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
	if countRows(t, w.db, "motifs") != 1 {
		t.Fatal("expected the catalog to keep a single row")
	}
}

func TestDeleteMotifNotFound(t *testing.T) {
	w, _ := newTestWorkbench(t)

	err := w.DeleteMotif(context.Background(), "missing")
	if !errors.Is(err, ErrMotifNotFound) {
		t.Fatalf("expected ErrMotifNotFound, got %v", err)
	}
}

func insertMotif(t *testing.T, w *Workbench, id, name string, at time.Time) {
	t.Helper()

	if _, err := w.db.ExecContext(context.Background(), `
INSERT INTO motifs (id, name, description, query_json, url, residue_count, created_at)
VALUES (?, ?, '', '{}', 'https://example.test', 3, ?)
`, id, name, at); err != nil {
		t.Fatalf("insert motif: %v", err)
	}
}

func TestFindMotif(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkbench(t)

	base := time.Now().UTC()
	insertMotif(t, w, "aa1", "alpha", base)
	insertMotif(t, w, "aa2", "beta", base.Add(time.Second))

	m, err := w.FindMotif(ctx, "alpha")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if m.ID != "aa1" {
		t.Fatalf("expected aa1 for name alpha, got %s", m.ID)
	}

	m, err = w.FindMotif(ctx, "aa2")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if m.Name != "beta" {
		t.Fatalf("expected beta for id aa2, got %s", m.Name)
	}

	if _, err := w.FindMotif(ctx, "aa"); err == nil {
		t.Fatal("expected ambiguity error for prefix aa")
	}
	if _, err := w.FindMotif(ctx, "gamma"); !errors.Is(err, ErrMotifNotFound) {
		t.Fatalf("expected ErrMotifNotFound, got %v", err)
	}
}

func TestReindexMotifs(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkbench(t)

	target := &recordingTarget{}
	w.RegisterSyncTarget(target)

	n, err := w.ReindexMotifs(ctx)
	if err != nil {
		t.Fatalf("reindex empty catalog: %v", err)
	}
	if n != 0 || len(target.calls) != 0 {
		t.Fatalf("expected no dispatch for empty catalog, got n=%d calls=%d", n, len(target.calls))
	}

	base := time.Now().UTC()
	insertMotif(t, w, "m1", "alpha", base)
	insertMotif(t, w, "m2", "beta", base.Add(time.Second))

	n, err = w.ReindexMotifs(ctx)
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 motifs reindexed, got %d", n)
	}
	if len(target.calls) != 1 || len(target.calls[0].Upserts) != 2 {
		t.Fatalf("expected one change set with 2 upserts, got %+v", target.calls)
	}

	// Reindex is the repair path, so target failures surface.
	target.fail = true
	if _, err := w.ReindexMotifs(ctx); err == nil {
		t.Fatal("expected reindex to report target failure")
	}
}

func TestMotifChangeSetMerge(t *testing.T) {
	var set MotifChangeSet
	if !set.IsEmpty() {
		t.Fatal("expected zero value to be empty")
	}

	set.Merge(MotifChangeSet{Upserts: []SavedMotif{{ID: "m1"}}})
	set.Merge(MotifChangeSet{Deletions: []string{"m2"}})

	if set.IsEmpty() {
		t.Fatal("expected merged set to be non-empty")
	}
	if len(set.Upserts) != 1 || len(set.Deletions) != 1 {
		t.Fatalf("unexpected merged set: %+v", set)
	}
}

func TestSearchMotifsWithoutIndex(t *testing.T) {
	w, _ := newTestWorkbench(t)

	if _, err := w.SearchMotifs(context.Background(), "triad", 10); err == nil {
		t.Fatal("expected error when no index is configured")
	}
}
