package handler

import (
	"context"
	"strings"
	"time"

	"github.com/solvecircle/dailyproof/internal/application/query"
	"github.com/solvecircle/dailyproof/internal/interface/discord/presenter"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// SummarizeHandler handles the /summarize admin command.
type SummarizeHandler struct {
	summary  *query.MonthlySummaryHandler
	location *time.Location
}

// NewSummarizeHandler creates a new SummarizeHandler.
func NewSummarizeHandler(summary *query.MonthlySummaryHandler, loc *time.Location) *SummarizeHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SummarizeHandler{summary: summary, location: loc}
}

// Handle generates or retrieves the consistency report. args carries the
// raw command arguments; an optional month like "January-2026" or
// "2026-01" selects the month, defaulting to the current one.
func (h *SummarizeHandler) Handle(ctx context.Context, args []string) (string, error) {
	month := timeutil.CurrentMonth(h.location)
	if len(args) > 0 {
		arg := strings.TrimSpace(strings.Join(args, " "))
		if arg != "" {
			parsed, err := timeutil.ParseMonth(arg)
			if err != nil {
				return presenter.BadMonth(), nil
			}
			month = parsed
		}
	}

	res, err := h.summary.Handle(ctx, query.MonthlySummaryQuery{Month: month})
	if err != nil {
		return "", err
	}
	return presenter.SummaryReady(res.Report), nil
}
