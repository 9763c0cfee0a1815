package query

import (
	"context"

	"github.com/solvecircle/dailyproof/internal/domain/report"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY SUMMARY QUERY
// Generates (or returns the pre-existing) consistency report for a month.
// Classified as a query at the surface even though it writes the report
// partition: the write is idempotent and purely derived, so repeated
// invocations are observationally read-only.
// ══════════════════════════════════════════════════════════════════════════════

// MonthlySummaryQuery contains the parameters of a summary request.
type MonthlySummaryQuery struct {
	// Month is the calendar month to summarize.
	Month timeutil.Month
}

// MonthlySummaryResult contains the result of a summary request.
type MonthlySummaryResult struct {
	// Report is the generated or pre-existing monthly report.
	Report *report.MonthlyReport
}

// MonthlySummaryHandler handles the MonthlySummaryQuery.
type MonthlySummaryHandler struct {
	reporter *report.Reporter
}

// NewMonthlySummaryHandler creates a new MonthlySummaryHandler.
func NewMonthlySummaryHandler(reporter *report.Reporter) *MonthlySummaryHandler {
	return &MonthlySummaryHandler{reporter: reporter}
}

// Handle executes the query.
func (h *MonthlySummaryHandler) Handle(ctx context.Context, q MonthlySummaryQuery) (*MonthlySummaryResult, error) {
	rep, err := h.reporter.MonthlySummary(ctx, q.Month)
	if err != nil {
		return nil, err
	}
	return &MonthlySummaryResult{Report: rep}, nil
}
