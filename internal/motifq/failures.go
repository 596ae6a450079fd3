package motifq

import (
	"context"
	"fmt"
	"time"
)

// Operations that record a failure tag when their last run failed. Tags
// persist across processes so status can report them, and clear on the next
// successful run of the same operation.
const (
	opSubmit = "submit"
	opCheck  = "check"
)

// Failure is a persisted record of an operation whose last run failed.
type Failure struct {
	Op       string
	Detail   string
	FailedAt time.Time
}

// recordFailure tags op as failed. Tagging is best effort: a storage error
// here must not mask the failure being recorded, so it is only logged.
func (w *Workbench) recordFailure(ctx context.Context, op, detail string) {
	if _, err := w.db.ExecContext(ctx, `
INSERT INTO failed_ops (op, detail, failed_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(op) DO UPDATE SET detail = excluded.detail, failed_at = CURRENT_TIMESTAMP
`, op, detail); err != nil {
		w.loggerOrDefault().Error("Failed to record failure tag", "op", op, "error", err)
	}
}

// clearFailure removes the failure tag for op, if any.
func (w *Workbench) clearFailure(ctx context.Context, op string) {
	if _, err := w.db.ExecContext(ctx, `DELETE FROM failed_ops WHERE op = ?`, op); err != nil {
		w.loggerOrDefault().Error("Failed to clear failure tag", "op", op, "error", err)
	}
}

// Failures lists operations whose last run failed, oldest first.
func (w *Workbench) Failures(ctx context.Context) ([]Failure, error) {
	rows, err := w.db.QueryContext(ctx, `
SELECT op, detail, failed_at
FROM failed_ops
ORDER BY failed_at ASC, op ASC
`)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Op, &f.Detail, &f.FailedAt); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return failures, nil
}
