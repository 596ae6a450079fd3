package motifq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/strucbio/motifq/internal/motif"
	"github.com/strucbio/motifq/internal/selection"
)

func addSubmittablePicks(t *testing.T, w *Workbench, history *selection.MemoryHistory) {
	t.Helper()

	history.Add(pickEntry("e1", "1ABC", "A", 5, "HIS"))
	history.Add(pickEntry("e2", "1ABC", "B", 1, "ASP"))
	history.Add(pickEntry("e3", "1ABC", "A", 2, "SER"))

	if _, err := w.SyncPicks(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestSubmitRecordsSubmission(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)
	addSubmittablePicks(t, w, history)

	sub, err := w.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.HasPrefix(sub.URL, motif.DefaultSearchURL) {
		t.Fatalf("expected default base url, got %s", sub.URL)
	}
	if !strings.HasSuffix(sub.URL, "&return_type=assembly") {
		t.Fatalf("expected assembly return type, got %s", sub.URL)
	}
	if sub.ResidueCount != 3 {
		t.Fatalf("expected 3 residues, got %d", sub.ResidueCount)
	}
	if !strings.Contains(sub.QueryJSON, `"score_cutoff":0`) {
		t.Fatalf("expected zero score cutoff in query, got %s", sub.QueryJSON)
	}

	latest, err := w.LatestSubmission(ctx)
	if err != nil {
		t.Fatalf("latest submission: %v", err)
	}
	if latest.ID != sub.ID {
		t.Fatalf("expected latest submission %s, got %s", sub.ID, latest.ID)
	}

	failures, err := w.Failures(ctx)
	if err != nil {
		t.Fatalf("failures: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no failure tags, got %v", failures)
	}
}

func TestSubmitRequiresMinimumPicks(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)

	history.Add(pickEntry("e1", "1ABC", "A", 5, "HIS"))
	history.Add(pickEntry("e2", "1ABC", "B", 1, "ASP"))
	if _, err := w.SyncPicks(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if _, err := w.Submit(ctx); err == nil {
		t.Fatal("expected error with 2 picks")
	}
	if countRows(t, w.db, "submissions") != 0 {
		t.Fatal("expected no submission to be recorded")
	}
}

func TestSubmitValidationFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)

	history.Add(pickEntry("e1", "1ABC", "A", 5, "HIS"))
	history.Add(pickEntry("e2", "1ABC", "B", 1, "ASP"))
	history.Add(pickEntry("het", "1ABC", "C", 0, "HEM"))
	if _, err := w.SyncPicks(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := w.ToggleExchange(ctx, "e1", "ARG"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	_, err := w.Submit(ctx)
	if err == nil {
		t.Fatal("expected validation error for non-polymeric pick")
	}
	if !motif.IsValidationError(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	var nonPoly *motif.NonPolymericSelectionError
	if !errors.As(err, &nonPoly) || nonPoly.Entry != "het" {
		t.Fatalf("expected NonPolymericSelectionError for het, got %v", err)
	}

	if countRows(t, w.db, "submissions") != 0 {
		t.Fatal("expected no submission after validation failure")
	}
	got := w.Exchanges("e1")
	if len(got) != 2 || got[0] != "HIS" || got[1] != "ARG" {
		t.Fatalf("expected exchange state untouched, got %v", got)
	}

	failures, err := w.Failures(ctx)
	if err != nil {
		t.Fatalf("failures: %v", err)
	}
	if len(failures) != 1 || failures[0].Op != "submit" {
		t.Fatalf("expected a submit failure tag, got %v", failures)
	}

	// Fixing the picks and submitting again clears the tag.
	if err := w.RemovePick(ctx, "het"); err != nil {
		t.Fatalf("remove het: %v", err)
	}
	history.Add(pickEntry("e3", "1ABC", "A", 2, "SER"))
	if _, err := w.SyncPicks(ctx); err != nil {
		t.Fatalf("re-sync: %v", err)
	}
	if _, err := w.Submit(ctx); err != nil {
		t.Fatalf("submit after fix: %v", err)
	}
	failures, err = w.Failures(ctx)
	if err != nil {
		t.Fatalf("failures: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected failure tag cleared after success, got %v", failures)
	}
}

func TestDispatchRejectsUnknownAction(t *testing.T) {
	w, _ := newTestWorkbench(t)

	if _, err := w.Dispatch(context.Background(), Action(99)); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestDispatchSubmit(t *testing.T) {
	ctx := context.Background()
	w, history := newTestWorkbench(t)
	addSubmittablePicks(t, w, history)

	result, err := w.Dispatch(ctx, ActionSubmit)
	if err != nil {
		t.Fatalf("dispatch submit: %v", err)
	}
	if result.Action != ActionSubmit {
		t.Fatalf("expected submit result, got %s", result.Action)
	}
	if result.URL == "" || result.Detail != "3 residues" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func insertSubmission(t *testing.T, w *Workbench, id, url string, at time.Time) {
	t.Helper()

	if _, err := w.db.ExecContext(context.Background(), `
INSERT INTO submissions (id, url, query_json, residue_count, submitted_at)
VALUES (?, ?, ?, ?, ?)
`, id, url, "{}", 3, at); err != nil {
		t.Fatalf("insert submission: %v", err)
	}
}

func TestDispatchCheck(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkbench(t)

	ok := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	insertSubmission(t, w, "s1", ok.URL, time.Now().UTC().Add(-time.Hour))

	result, err := w.Dispatch(ctx, ActionCheck)
	if err != nil {
		t.Fatalf("dispatch check: %v", err)
	}
	if result.Detail != "HTTP 200" {
		t.Fatalf("expected HTTP 200, got %s", result.Detail)
	}

	// A newer submission pointing at a failing service tags the check op.
	failing := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	insertSubmission(t, w, "s2", failing.URL, time.Now().UTC())

	if _, err := w.Dispatch(ctx, ActionCheck); err == nil {
		t.Fatal("expected error for failing service")
	}
	failures, err := w.Failures(ctx)
	if err != nil {
		t.Fatalf("failures: %v", err)
	}
	if len(failures) != 1 || failures[0].Op != "check" {
		t.Fatalf("expected a check failure tag, got %v", failures)
	}

	// Pointing the latest submission back at a healthy service clears it.
	insertSubmission(t, w, "s3", ok.URL, time.Now().UTC().Add(time.Minute))
	if _, err := w.Dispatch(ctx, ActionCheck); err != nil {
		t.Fatalf("dispatch check after recovery: %v", err)
	}
	failures, err = w.Failures(ctx)
	if err != nil {
		t.Fatalf("failures: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected check tag cleared, got %v", failures)
	}
}

func TestLatestSubmissionEmpty(t *testing.T) {
	w, _ := newTestWorkbench(t)

	if _, err := w.LatestSubmission(context.Background()); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("expected ErrNoSubmissions, got %v", err)
	}
}

func TestCheckURLRejectsNon200(t *testing.T) {
	w, _ := newTestWorkbench(t)

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := w.CheckURL(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestCheckURLReportsResultCount(t *testing.T) {
	w, _ := newTestWorkbench(t)

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte(`{"total_count": 42, "result_set": []}`))
	}))
	defer server.Close()

	res, err := w.CheckURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("check url: %v", err)
	}
	if res.Status != http.StatusOK || res.TotalCount != 42 {
		t.Fatalf("expected 42 results over HTTP 200, got %+v", res)
	}

	insertSubmission(t, w, "s1", server.URL, time.Now().UTC())
	result, err := w.Dispatch(context.Background(), ActionCheck)
	if err != nil {
		t.Fatalf("dispatch check: %v", err)
	}
	if result.Detail != "HTTP 200, 42 results" {
		t.Fatalf("expected count in detail, got %q", result.Detail)
	}
}
