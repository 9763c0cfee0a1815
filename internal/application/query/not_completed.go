package query

import (
	"context"

	"github.com/solvecircle/dailyproof/internal/domain/report"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/domain/storage"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOT COMPLETED QUERY
// Administrator view: who has not submitted today. Answered from the
// durable ledger, never the volatile counter, so a restarted process
// still reports the day correctly.
// ══════════════════════════════════════════════════════════════════════════════

// NotCompletedQuery contains the parameters of a pending-members check.
type NotCompletedQuery struct {
	// Date is the day-partition key (YYYY-MM-DD) to check.
	Date string
}

// Validate validates the query.
func (q NotCompletedQuery) Validate() error {
	if !timeutil.IsDayKey(q.Date) {
		return shared.WrapError("query", "NotCompleted", shared.ErrInvalidInput,
			"invalid date", nil)
	}
	return nil
}

// NotCompletedResult contains the result of a pending-members check.
type NotCompletedResult struct {
	// Date is the day that was checked.
	Date string

	// Pending holds the display names of members without a submission,
	// sorted by display name. Empty means everyone completed.
	Pending []string
}

// AllCompleted reports whether every registered member submitted.
func (r *NotCompletedResult) AllCompleted() bool {
	return len(r.Pending) == 0
}

// NotCompletedHandler handles the NotCompletedQuery.
type NotCompletedHandler struct {
	reporter *report.Reporter
	store    storage.Store
}

// NewNotCompletedHandler creates a new NotCompletedHandler.
func NewNotCompletedHandler(reporter *report.Reporter, store storage.Store) *NotCompletedHandler {
	return &NotCompletedHandler{reporter: reporter, store: store}
}

// Handle executes the query. A day with no partition at all yields
// ErrNoDataForToday so the admin sees "no data" instead of a misleading
// full pending list.
func (h *NotCompletedHandler) Handle(ctx context.Context, q NotCompletedQuery) (*NotCompletedResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if err := h.store.GetPartition(ctx, q.Date); err != nil {
		if err == storage.ErrPartitionNotFound {
			return nil, shared.ErrNoDataForToday
		}
		return nil, shared.WrapError("query", "NotCompleted", shared.ErrExternalService,
			"failed to check day partition", err)
	}

	pending, err := h.reporter.NotCompleted(ctx, q.Date)
	if err != nil {
		return nil, err
	}

	return &NotCompletedResult{Date: q.Date, Pending: pending}, nil
}
