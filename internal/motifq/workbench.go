// Package motifq manages the motif workbench: per-pick state synced from an
// externally-owned selection history, a SQLite record of picks, submissions,
// and saved motifs, and query building and dispatch against a structural
// motif search service.
package motifq

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/strucbio/motifq/internal/motif"
	"github.com/strucbio/motifq/internal/selection"
)

const defaultHTTPTimeout = 10 * time.Second

// Options control query dispatch and sync-target construction.
type Options struct {
	SearchBaseURL string
	ReturnType    string
	HTTPTimeout   time.Duration
	Meilisearch   MeilisearchConfig
	ShellTarget   *ShellTargetConfig
}

// Workbench owns pick state and its SQLite persistence. The selection
// history stays externally owned: the workbench reads snapshots from it,
// delegates moves and removals to it, and reconciles its own state after
// every change.
type Workbench struct {
	db       *sql.DB
	history  selection.History
	tracker  *motif.Tracker
	resolver motif.Resolver
	opts     Options
	logger   *slog.Logger
	targets  []MotifSyncTarget
	search   *meilisearchTarget
	client   *http.Client
}

// NewWorkbench constructs a workbench over an open database and history.
func NewWorkbench(db *sql.DB, history selection.History, opts Options, logger *slog.Logger) *Workbench {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Workbench{
		db:       db,
		history:  history,
		tracker:  motif.NewTracker(),
		resolver: motif.FirstElementResolver{},
		opts:     opts,
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
	}
}

// SetResolver overrides how entries resolve to structural locations.
func (w *Workbench) SetResolver(r motif.Resolver) {
	if r == nil {
		w.resolver = motif.FirstElementResolver{}
		return
	}
	w.resolver = r
}

func (w *Workbench) loggerOrDefault() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return slog.Default()
}

// LoadState restores tracked picks from the database. Call once after
// opening, before the first SyncPicks.
func (w *Workbench) LoadState(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `SELECT entry_id, native_type, exchanges FROM picks`)
	if err != nil {
		return fmt.Errorf("load picks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, native, exchangesJSON string
		if err := rows.Scan(&id, &native, &exchangesJSON); err != nil {
			return fmt.Errorf("scan pick: %w", err)
		}
		var exchanges []string
		if err := json.Unmarshal([]byte(exchangesJSON), &exchanges); err != nil {
			return fmt.Errorf("decode exchanges for pick %s: %w", id, err)
		}
		w.tracker.Restore(motif.EntryID(id), native, exchanges)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate picks: %w", err)
	}
	return nil
}

// SyncSummary captures aggregate details about a pick synchronization run.
type SyncSummary struct {
	Entries  int
	Tracked  int
	Inserted int
	Updated  int
	Deleted  int
	Changed  bool
}

// SyncPicks reconciles tracked picks with the current history snapshot and
// the picks table with the tracker. New entries are seeded, vanished entries
// pruned, surviving entries left untouched.
func (w *Workbench) SyncPicks(ctx context.Context) (SyncSummary, error) {
	logger := w.loggerOrDefault()

	entries, err := w.history.Entries()
	if err != nil {
		return SyncSummary{}, fmt.Errorf("read selection history: %w", err)
	}

	changed := w.tracker.Sync(entries)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("begin transaction: %w", err)
	}
	stats, err := w.persistPicksTx(ctx, tx, entries)
	if err != nil {
		tx.Rollback()
		return SyncSummary{}, err
	}
	if err := tx.Commit(); err != nil {
		return SyncSummary{}, fmt.Errorf("commit transaction: %w", err)
	}

	summary := SyncSummary{
		Entries:  len(entries),
		Tracked:  w.tracker.Len(),
		Inserted: stats.inserted,
		Updated:  stats.updated,
		Deleted:  stats.deleted,
		Changed:  changed || stats.inserted > 0 || stats.updated > 0 || stats.deleted > 0,
	}

	trackedPicks.Set(float64(summary.Tracked))
	selectionSyncsTotal.Inc()

	if summary.Changed {
		logger.Info("Synced picks", "entries", summary.Entries, "tracked", summary.Tracked, "inserted", summary.Inserted, "updated", summary.Updated, "deleted", summary.Deleted)
	}
	return summary, nil
}

type pickSyncStats struct {
	inserted int
	updated  int
	deleted  int
}

type storedPick struct {
	native    string
	exchanges string
}

func (w *Workbench) persistPicksTx(ctx context.Context, tx *sql.Tx, entries []motif.Entry) (pickSyncStats, error) {
	existing, err := loadExistingPicks(ctx, tx)
	if err != nil {
		return pickSyncStats{}, err
	}

	seen := make(map[motif.EntryID]struct{}, len(entries))
	var stats pickSyncStats

	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}

		pick, ok := w.tracker.Pick(e.ID)
		if !ok {
			continue
		}
		exchangesJSON, err := encodeExchanges(pick.Exchanges())
		if err != nil {
			return pickSyncStats{}, fmt.Errorf("encode exchanges for pick %s: %w", e.ID, err)
		}

		if row, ok := existing[e.ID]; ok {
			if row.native == pick.Native && row.exchanges == exchangesJSON {
				continue
			}
			if _, execErr := tx.ExecContext(ctx, `
UPDATE picks
SET native_type = ?, exchanges = ?, updated_at = CURRENT_TIMESTAMP
WHERE entry_id = ?
`, pick.Native, exchangesJSON, string(e.ID)); execErr != nil {
				return pickSyncStats{}, fmt.Errorf("update pick: %w", execErr)
			}
			stats.updated++
			continue
		}

		if _, execErr := tx.ExecContext(ctx, `
INSERT INTO picks (entry_id, native_type, exchanges)
VALUES (?, ?, ?)
`, string(e.ID), pick.Native, exchangesJSON); execErr != nil {
			return pickSyncStats{}, fmt.Errorf("insert pick: %w", execErr)
		}
		stats.inserted++
	}

	for id := range existing {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, execErr := tx.ExecContext(ctx, `DELETE FROM picks WHERE entry_id = ?`, string(id)); execErr != nil {
			return pickSyncStats{}, fmt.Errorf("delete stale pick: %w", execErr)
		}
		stats.deleted++
	}

	return stats, nil
}

func loadExistingPicks(ctx context.Context, tx *sql.Tx) (map[motif.EntryID]storedPick, error) {
	rows, err := tx.QueryContext(ctx, `SELECT entry_id, native_type, exchanges FROM picks`)
	if err != nil {
		return nil, fmt.Errorf("load existing picks: %w", err)
	}
	defer rows.Close()

	existing := make(map[motif.EntryID]storedPick)
	for rows.Next() {
		var id string
		var row storedPick
		if err := rows.Scan(&id, &row.native, &row.exchanges); err != nil {
			return nil, fmt.Errorf("scan existing pick: %w", err)
		}
		existing[motif.EntryID(id)] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing picks: %w", err)
	}

	return existing, nil
}

func encodeExchanges(exchanges []string) (string, error) {
	if exchanges == nil {
		exchanges = []string{}
	}
	data, err := json.Marshal(exchanges)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PickView is one visible pick prepared for display.
type PickView struct {
	Position  int
	Entry     motif.Entry
	Native    string
	Exchanges []string
	Location  motif.Location
	Resolved  bool
}

// Picks returns the visible window of the history with tracked state
// attached. Call SyncPicks first so the tracker matches the snapshot.
// Entries whose locus cannot be resolved still appear, unresolved.
func (w *Workbench) Picks() ([]PickView, error) {
	entries, err := w.history.Entries()
	if err != nil {
		return nil, fmt.Errorf("read selection history: %w", err)
	}

	visible := motif.Visible(entries)
	views := make([]PickView, 0, len(visible))
	for i, e := range visible {
		view := PickView{Position: i + 1, Entry: e}
		if pick, ok := w.tracker.Pick(e.ID); ok {
			view.Native = pick.Native
			view.Exchanges = pick.Exchanges()
		}
		if loc, rErr := w.resolver.Resolve(e); rErr == nil {
			view.Location = loc
			view.Resolved = true
		}
		views = append(views, view)
	}
	return views, nil
}

// FindPick maps a command-line pick argument to an entry id. A numeric
// argument is a 1-based position in the visible window; anything else must
// be a unique prefix of an entry id.
func (w *Workbench) FindPick(arg string) (motif.EntryID, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("empty pick reference")
	}

	entries, err := w.history.Entries()
	if err != nil {
		return "", fmt.Errorf("read selection history: %w", err)
	}

	if pos, convErr := strconv.Atoi(arg); convErr == nil {
		visible := motif.Visible(entries)
		if pos < 1 || pos > len(visible) {
			return "", fmt.Errorf("no pick at position %d (history shows %d)", pos, len(visible))
		}
		return visible[pos-1].ID, nil
	}

	var match motif.EntryID
	for _, e := range entries {
		if !strings.HasPrefix(string(e.ID), arg) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("pick id %q is ambiguous", arg)
		}
		match = e.ID
	}
	if match == "" {
		return "", fmt.Errorf("no pick matches id %q", arg)
	}
	return match, nil
}

// MovePick shifts a pick one position within the visible window and
// re-syncs.
func (w *Workbench) MovePick(ctx context.Context, id motif.EntryID, dir selection.MoveDirection) error {
	if err := w.history.Move(id, dir, motif.DisplayCap); err != nil {
		return fmt.Errorf("move pick %s: %w", id, err)
	}
	_, err := w.SyncPicks(ctx)
	return err
}

// RemovePick deletes a pick from the history and re-syncs, pruning its
// tracked state.
func (w *Workbench) RemovePick(ctx context.Context, id motif.EntryID) error {
	if err := w.history.Remove(id); err != nil {
		return fmt.Errorf("remove pick %s: %w", id, err)
	}
	_, err := w.SyncPicks(ctx)
	return err
}

// ToggleExchange flips a residue type in a pick's exchange set and persists
// the new set. Reports whether the type is allowed after the toggle.
func (w *Workbench) ToggleExchange(ctx context.Context, id motif.EntryID, code string) (bool, error) {
	canonical, ok := motif.CanonicalResidueType(code)
	if !ok {
		return false, fmt.Errorf("unknown residue type %q", code)
	}

	if !w.tracker.ToggleExchange(id, canonical) {
		return false, fmt.Errorf("no pick with id %s", id)
	}

	exchanges := w.tracker.Exchanges(id)
	exchangesJSON, err := encodeExchanges(exchanges)
	if err != nil {
		return false, fmt.Errorf("encode exchanges for pick %s: %w", id, err)
	}
	if _, err := w.db.ExecContext(ctx, `
UPDATE picks
SET exchanges = ?, updated_at = CURRENT_TIMESTAMP
WHERE entry_id = ?
`, exchangesJSON, string(id)); err != nil {
		return false, fmt.Errorf("persist exchanges for pick %s: %w", id, err)
	}

	for _, c := range exchanges {
		if c == canonical {
			return true, nil
		}
	}
	return false, nil
}

// Exchanges returns the current exchange set for a pick.
func (w *Workbench) Exchanges(id motif.EntryID) []string {
	return w.tracker.Exchanges(id)
}

// WatchSelection re-syncs picks whenever the selection document at path
// changes, until the context is cancelled.
func (w *Workbench) WatchSelection(ctx context.Context, path string, debounce time.Duration) error {
	watcher := &selection.Watcher{
		Path:     path,
		Debounce: debounce,
		Logger:   w.loggerOrDefault(),
		OnChange: func(ctx context.Context) error {
			_, err := w.SyncPicks(ctx)
			return err
		},
	}
	return watcher.Run(ctx)
}
