package motifq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strucbio/motifq/internal/motif"
)

// ErrMotifNotFound is returned when a motif reference matches nothing.
var ErrMotifNotFound = errors.New("motif not found")

// SavedMotif is a named, reusable motif query snapshotted from the
// workbench.
type SavedMotif struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	QueryJSON    string    `json:"query_json"`
	URL          string    `json:"url"`
	ResidueCount int       `json:"residue_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// MotifChangeSet aggregates motif upserts and deletions.
type MotifChangeSet struct {
	Upserts   []SavedMotif `json:"upserts"`
	Deletions []string     `json:"deletions"`
}

// Merge combines another change set into the receiver.
func (c *MotifChangeSet) Merge(other MotifChangeSet) {
	if len(other.Upserts) > 0 {
		c.Upserts = append(c.Upserts, other.Upserts...)
	}
	if len(other.Deletions) > 0 {
		c.Deletions = append(c.Deletions, other.Deletions...)
	}
}

// IsEmpty reports whether there are no recorded changes.
func (c MotifChangeSet) IsEmpty() bool {
	return len(c.Upserts) == 0 && len(c.Deletions) == 0
}

// MotifSyncTarget consumes motif change notifications.
type MotifSyncTarget interface {
	ApplyMotifChanges(ctx context.Context, changes MotifChangeSet) error
}

// RegisterSyncTarget adds a target that receives catalog changes.
func (w *Workbench) RegisterSyncTarget(t MotifSyncTarget) {
	if t == nil {
		return
	}
	w.targets = append(w.targets, t)
}

// InitSyncTargets constructs the targets named in the options. A search
// backend that cannot be reached is logged and skipped; the database stays
// authoritative and a later reindex repairs the target.
func (w *Workbench) InitSyncTargets(ctx context.Context) {
	target, err := newMeilisearchTarget(ctx, w.opts.Meilisearch, w.loggerOrDefault())
	if err != nil {
		w.loggerOrDefault().Warn("Failed to initialize Meilisearch", "error", err)
	} else if target != nil {
		w.search = target
		w.RegisterSyncTarget(target)
	}

	if shell := newShellTarget(w.opts.ShellTarget); shell != nil {
		w.RegisterSyncTarget(shell)
	}
}

func (w *Workbench) dispatchMotifChanges(ctx context.Context, changes MotifChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}
	for _, target := range w.targets {
		if err := target.ApplyMotifChanges(ctx, changes); err != nil {
			return fmt.Errorf("apply motif changes: %w", err)
		}
	}
	return nil
}

// buildCurrentQuery compiles the visible picks into a validated query plus
// its encoded form and search URL.
func (w *Workbench) buildCurrentQuery() (*motif.Query, string, string, error) {
	entries, err := w.history.Entries()
	if err != nil {
		return nil, "", "", fmt.Errorf("read selection history: %w", err)
	}
	visible := motif.Visible(entries)
	if !motif.CanSubmit(len(visible)) {
		return nil, "", "", fmt.Errorf("need at least %d picked residues, have %d", motif.MinMotifSize, len(visible))
	}

	query, err := motif.BuildQuery(visible, w.resolver, w.tracker.Exchanges)
	if err != nil {
		return nil, "", "", err
	}
	queryJSON, err := query.Encode()
	if err != nil {
		return nil, "", "", fmt.Errorf("encode query: %w", err)
	}
	url, err := motif.BuildURL(w.opts.SearchBaseURL, query, w.opts.ReturnType)
	if err != nil {
		return nil, "", "", fmt.Errorf("build search url: %w", err)
	}
	return query, string(queryJSON), url, nil
}

// SaveMotif snapshots the current picks as a named motif. Names are unique
// within the catalog. The motif is persisted first; sync targets that fail
// are logged and left for reindex.
func (w *Workbench) SaveMotif(ctx context.Context, name, description string) (*SavedMotif, error) {
	logger := w.loggerOrDefault()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("motif name is required")
	}
	var existing int
	if err := w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM motifs WHERE name = ?`, name).Scan(&existing); err != nil {
		return nil, fmt.Errorf("check motif name: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("motif %q already exists", name)
	}

	query, queryJSON, url, err := w.buildCurrentQuery()
	if err != nil {
		return nil, err
	}

	sm := &SavedMotif{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  strings.TrimSpace(description),
		QueryJSON:    queryJSON,
		URL:          url,
		ResidueCount: len(query.ResidueIDs),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := w.db.ExecContext(ctx, `
INSERT INTO motifs (id, name, description, query_json, url, residue_count, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, sm.ID, sm.Name, sm.Description, sm.QueryJSON, sm.URL, sm.ResidueCount, sm.CreatedAt); err != nil {
		return nil, fmt.Errorf("save motif: %w", err)
	}

	motifSavesTotal.Inc()
	logger.Info("Saved motif", "motif_id", sm.ID, "name", sm.Name, "residues", sm.ResidueCount)

	if err := w.dispatchMotifChanges(ctx, MotifChangeSet{Upserts: []SavedMotif{*sm}}); err != nil {
		logger.Warn("Motif saved but sync target failed", "motif_id", sm.ID, "error", err)
	}
	return sm, nil
}

// DeleteMotif removes a saved motif by id.
func (w *Workbench) DeleteMotif(ctx context.Context, id string) error {
	logger := w.loggerOrDefault()

	res, err := w.db.ExecContext(ctx, `DELETE FROM motifs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete motif %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for motif %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrMotifNotFound, id)
	}

	logger.Info("Deleted motif", "motif_id", id)

	if err := w.dispatchMotifChanges(ctx, MotifChangeSet{Deletions: []string{id}}); err != nil {
		logger.Warn("Motif deleted but sync target failed", "motif_id", id, "error", err)
	}
	return nil
}

// ListMotifs returns every saved motif, oldest first.
func (w *Workbench) ListMotifs(ctx context.Context) ([]SavedMotif, error) {
	rows, err := w.db.QueryContext(ctx, `
SELECT id, name, description, query_json, url, residue_count, created_at
FROM motifs
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("load motifs: %w", err)
	}
	defer rows.Close()

	var motifs []SavedMotif
	for rows.Next() {
		var m SavedMotif
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.QueryJSON, &m.URL, &m.ResidueCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan motif: %w", err)
		}
		motifs = append(motifs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate motifs: %w", err)
	}
	return motifs, nil
}

// FindMotif resolves a motif reference: an exact name, or a unique id
// prefix.
func (w *Workbench) FindMotif(ctx context.Context, ref string) (*SavedMotif, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty motif reference")
	}

	motifs, err := w.ListMotifs(ctx)
	if err != nil {
		return nil, err
	}

	var match *SavedMotif
	for i := range motifs {
		m := &motifs[i]
		if m.Name != ref && !strings.HasPrefix(m.ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("motif reference %q is ambiguous", ref)
		}
		match = m
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrMotifNotFound, ref)
	}
	return match, nil
}

// ReindexMotifs pushes the full catalog to every sync target and returns the
// number of motifs dispatched. Unlike save and delete, target errors are
// returned: reindex exists to repair targets, so a failure here is the
// result.
func (w *Workbench) ReindexMotifs(ctx context.Context) (int, error) {
	motifs, err := w.ListMotifs(ctx)
	if err != nil {
		return 0, err
	}
	if len(motifs) == 0 {
		return 0, nil
	}
	if err := w.dispatchMotifChanges(ctx, MotifChangeSet{Upserts: motifs}); err != nil {
		return 0, err
	}
	w.loggerOrDefault().Info("Reindexed motifs", "count", len(motifs))
	return len(motifs), nil
}

// SearchMotifs queries the configured search index.
func (w *Workbench) SearchMotifs(ctx context.Context, query string, limit int64) ([]MotifHit, error) {
	if w.search == nil {
		return nil, errors.New("no search index configured")
	}
	return w.search.Search(ctx, query, limit)
}
