package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/solvecircle/dailyproof/internal/application/query"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY REPORT
// ══════════════════════════════════════════════════════════════════════════════

// Announcer posts a short notice to the configured admin channel.
type Announcer interface {
	Announce(ctx context.Context, message string) error
}

// MonthlyReport cuts the consistency report for the month that just
// ended. It fires on the 1st, shares the idempotent summary path with
// the admin command, and is therefore safe to race with a manual
// /summarize: whichever runs second sees the existing partition.
type MonthlyReport struct {
	summary    *query.MonthlySummaryHandler
	dispatcher Dispatcher
	announcer  Announcer
	location   *time.Location
	clock      func() time.Time
	logger     *slog.Logger
}

// NewMonthlyReport creates the job. announcer may be nil when no admin
// channel is configured.
func NewMonthlyReport(
	summary *query.MonthlySummaryHandler,
	dispatcher Dispatcher,
	announcer Announcer,
	loc *time.Location,
	logger *slog.Logger,
) *MonthlyReport {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MonthlyReport{
		summary:    summary,
		dispatcher: dispatcher,
		announcer:  announcer,
		location:   loc,
		clock:      time.Now,
		logger:     logger.With("job", "monthly_report"),
	}
}

// WithClock overrides the time source. Used by tests.
func (j *MonthlyReport) WithClock(clock func() time.Time) *MonthlyReport {
	j.clock = clock
	return j
}

// Name implements scheduler.Job.
func (j *MonthlyReport) Name() string { return "monthly_report" }

// Description implements scheduler.Job.
func (j *MonthlyReport) Description() string {
	return "generate the consistency report for the month that just ended"
}

// Run implements scheduler.Job.
func (j *MonthlyReport) Run(ctx context.Context) error {
	return j.dispatcher.Dispatch(ctx, j.execute)
}

func (j *MonthlyReport) execute(ctx context.Context) {
	// Fired on the 1st; the report covers the previous month.
	month := timeutil.MonthOf(j.clock().In(j.location).AddDate(0, -1, 0))

	res, err := j.summary.Handle(ctx, query.MonthlySummaryQuery{Month: month})
	if err != nil {
		j.logger.Error("failed to generate monthly report", "month", month.String(), "error", err)
		return
	}

	if res.Report.Existed {
		j.logger.Info("monthly report already existed", "partition", res.Report.Partition)
		return
	}

	j.logger.Info("monthly report generated",
		"partition", res.Report.Partition,
		"members", len(res.Report.Records))

	if j.announcer != nil {
		if err := j.announcer.Announce(ctx, "Monthly consistency report ready: "+res.Report.Partition); err != nil {
			j.logger.Warn("failed to announce report", "error", err)
		}
	}
}
