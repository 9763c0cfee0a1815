// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/domain/submission"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION STATUS QUERY
// A member's own same-day submission count, read from the volatile daily
// counter. The counter is a cache of today, not the ledger: after a
// restart the count starts over at zero until the next reset.
// ══════════════════════════════════════════════════════════════════════════════

// SubmissionStatusQuery contains the parameters of a status check.
type SubmissionStatusQuery struct {
	// Handle is the platform username of the asking member.
	Handle member.Handle
}

// Validate validates the query.
func (q SubmissionStatusQuery) Validate() error {
	if !q.Handle.IsValid() {
		return shared.WrapError("query", "SubmissionStatus", shared.ErrInvalidInput,
			"invalid handle", member.ErrInvalidHandle)
	}
	return nil
}

// SubmissionStatusResult contains the result of a status check.
type SubmissionStatusResult struct {
	// DisplayName is the member's registered real name.
	DisplayName string

	// Count is today's submission tally.
	Count int
}

// SubmissionStatusHandler handles the SubmissionStatusQuery.
type SubmissionStatusHandler struct {
	registry *member.Registry
	counter  submission.DailyCounter
}

// NewSubmissionStatusHandler creates a new SubmissionStatusHandler.
func NewSubmissionStatusHandler(registry *member.Registry, counter submission.DailyCounter) *SubmissionStatusHandler {
	return &SubmissionStatusHandler{registry: registry, counter: counter}
}

// Handle executes the query. Unregistered members get ErrNotRegistered
// rather than a zero count, matching the submit path.
func (h *SubmissionStatusHandler) Handle(ctx context.Context, q SubmissionStatusQuery) (*SubmissionStatusResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m, err := h.registry.Lookup(q.Handle)
	if err != nil {
		return nil, err
	}

	count, err := h.counter.Get(ctx, q.Handle)
	if err != nil {
		return nil, shared.WrapError("query", "SubmissionStatus", shared.ErrExternalService,
			"failed to read counter", err)
	}

	return &SubmissionStatusResult{
		DisplayName: m.DisplayName,
		Count:       count,
	}, nil
}
