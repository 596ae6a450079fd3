package motifq

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/strucbio/motifq/internal/motif"
)

// Action identifies a dispatchable workbench operation.
type Action int

const (
	ActionSubmit Action = iota
	ActionCheck
)

func (a Action) String() string {
	switch a {
	case ActionSubmit:
		return "submit"
	case ActionCheck:
		return "check"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ActionResult is the outcome of a dispatched action.
type ActionResult struct {
	Action Action
	URL    string
	Detail string
}

// actionHandlers is the fixed dispatch table for workbench actions. New
// actions are added here; Dispatch rejects anything the table does not name.
var actionHandlers = map[Action]func(*Workbench, context.Context) (*ActionResult, error){
	ActionSubmit: (*Workbench).runSubmit,
	ActionCheck:  (*Workbench).runCheck,
}

// Dispatch runs the handler registered for the action.
func (w *Workbench) Dispatch(ctx context.Context, action Action) (*ActionResult, error) {
	handler, ok := actionHandlers[action]
	if !ok {
		return nil, fmt.Errorf("no handler for action %s", action)
	}
	return handler(w, ctx)
}

// ErrNoSubmissions is returned when an operation needs a prior submission
// and none has been recorded.
var ErrNoSubmissions = errors.New("no submissions recorded")

// Submission is one dispatched motif query.
type Submission struct {
	ID           string
	URL          string
	QueryJSON    string
	ResidueCount int
	SubmittedAt  time.Time
}

// Submit builds a query from the current picks and records the search URL.
// Call SyncPicks first so the tracker matches the history. Validation
// failures leave all pick state untouched: the failure is tagged and
// reported, nothing is recorded, and the caller keeps editing.
func (w *Workbench) Submit(ctx context.Context) (*Submission, error) {
	logger := w.loggerOrDefault()

	query, queryJSON, url, err := w.buildCurrentQuery()
	if err != nil {
		if motif.IsValidationError(err) {
			logger.Warn("Query validation failed", "error", err)
			validationFailuresTotal.WithLabelValues(validationKind(err)).Inc()
			w.recordFailure(ctx, opSubmit, err.Error())
		}
		return nil, err
	}

	sub := &Submission{
		ID:           uuid.New().String(),
		URL:          url,
		QueryJSON:    queryJSON,
		ResidueCount: len(query.ResidueIDs),
		SubmittedAt:  time.Now().UTC(),
	}
	if _, err := w.db.ExecContext(ctx, `
INSERT INTO submissions (id, url, query_json, residue_count, submitted_at)
VALUES (?, ?, ?, ?, ?)
`, sub.ID, sub.URL, sub.QueryJSON, sub.ResidueCount, sub.SubmittedAt); err != nil {
		return nil, fmt.Errorf("record submission: %w", err)
	}

	w.clearFailure(ctx, opSubmit)
	submissionsTotal.Inc()
	logger.Info("Submitted motif query", "submission_id", sub.ID, "residues", sub.ResidueCount)

	return sub, nil
}

// LatestSubmission returns the most recently recorded submission.
func (w *Workbench) LatestSubmission(ctx context.Context) (*Submission, error) {
	row := w.db.QueryRowContext(ctx, `
SELECT id, url, query_json, residue_count, submitted_at
FROM submissions
ORDER BY submitted_at DESC, id DESC
LIMIT 1
`)
	var sub Submission
	if err := row.Scan(&sub.ID, &sub.URL, &sub.QueryJSON, &sub.ResidueCount, &sub.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSubmissions
		}
		return nil, fmt.Errorf("load latest submission: %w", err)
	}
	return &sub, nil
}

// Submissions returns recorded submissions, newest first, at most limit
// (limit <= 0 means all).
func (w *Workbench) Submissions(ctx context.Context, limit int) ([]Submission, error) {
	q := `
SELECT id, url, query_json, residue_count, submitted_at
FROM submissions
ORDER BY submitted_at DESC, id DESC
`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = w.db.QueryContext(ctx, q+`LIMIT ?`, limit)
	} else {
		rows, err = w.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.URL, &sub.QueryJSON, &sub.ResidueCount, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

// CheckResult is the outcome of probing a search URL.
type CheckResult struct {
	Status     int
	TotalCount int
}

// searchReply is the slice of the service's response the probe reads.
type searchReply struct {
	TotalCount int `json:"total_count"`
}

// CheckURL fetches a search URL and reports the service's result count.
// Anything other than 200 is an error. Some deployments answer the
// browser-facing URL with HTML; a reply without a parseable count comes back
// with TotalCount -1.
func (w *Workbench) CheckURL(ctx context.Context, rawURL string) (*CheckResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query search service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	result := &CheckResult{Status: resp.StatusCode, TotalCount: -1}
	var reply searchReply
	if err := json.Unmarshal(body, &reply); err == nil {
		result.TotalCount = reply.TotalCount
	}
	return result, nil
}

func (w *Workbench) runSubmit(ctx context.Context) (*ActionResult, error) {
	sub, err := w.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return &ActionResult{
		Action: ActionSubmit,
		URL:    sub.URL,
		Detail: fmt.Sprintf("%d residues", sub.ResidueCount),
	}, nil
}

func (w *Workbench) runCheck(ctx context.Context) (*ActionResult, error) {
	sub, err := w.LatestSubmission(ctx)
	if err != nil {
		return nil, err
	}

	res, err := w.CheckURL(ctx, sub.URL)
	if err != nil {
		w.recordFailure(ctx, opCheck, err.Error())
		return nil, err
	}

	w.clearFailure(ctx, opCheck)
	detail := fmt.Sprintf("HTTP %d", res.Status)
	if res.TotalCount >= 0 {
		detail = fmt.Sprintf("HTTP %d, %d results", res.Status, res.TotalCount)
	}
	return &ActionResult{
		Action: ActionCheck,
		URL:    sub.URL,
		Detail: detail,
	}, nil
}

func validationKind(err error) string {
	var multi *motif.MultiModelError
	var tooMany *motif.TooManyResiduesError
	var nonPoly *motif.NonPolymericSelectionError
	switch {
	case errors.As(err, &multi):
		return "multi_model"
	case errors.As(err, &tooMany):
		return "too_many_residues"
	case errors.As(err, &nonPoly):
		return "non_polymeric"
	default:
		return "unknown"
	}
}
