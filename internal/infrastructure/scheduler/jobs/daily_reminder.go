// Package jobs contains the scheduled jobs of the bot.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/submission"
)

// ReminderNotifier delivers a reminder to one member. The transport
// decides the wording and the delivery channel.
type ReminderNotifier interface {
	RemindMember(ctx context.Context, m *member.Member) error
}

// Dispatcher serializes job work onto the bot's single worker loop, so
// a firing never races a command handler. Dispatch returns after the
// task has run.
type Dispatcher interface {
	Dispatch(ctx context.Context, task func(ctx context.Context)) error
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY REMINDER
// ══════════════════════════════════════════════════════════════════════════════

// DailyReminder nudges every registered member who has not submitted
// today, then resets the daily counter. The reset is the calendar
// boundary of the counter and runs unconditionally: a failed DM must
// not carry yesterday's tallies into today.
type DailyReminder struct {
	registry   *member.Registry
	counter    submission.DailyCounter
	notifier   ReminderNotifier
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewDailyReminder creates the job.
func NewDailyReminder(
	registry *member.Registry,
	counter submission.DailyCounter,
	notifier ReminderNotifier,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *DailyReminder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyReminder{
		registry:   registry,
		counter:    counter,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger.With("job", "daily_reminder"),
	}
}

// Name implements scheduler.Job.
func (j *DailyReminder) Name() string { return "daily_reminder" }

// Description implements scheduler.Job.
func (j *DailyReminder) Description() string {
	return "remind members without a submission today, then reset the daily counter"
}

// Run implements scheduler.Job.
func (j *DailyReminder) Run(ctx context.Context) error {
	return j.dispatcher.Dispatch(ctx, j.execute)
}

func (j *DailyReminder) execute(ctx context.Context) {
	start := time.Now()

	submitted, err := j.counter.Submitted(ctx)
	if err != nil {
		// Treat an unreadable counter as "nobody submitted": a spurious
		// reminder is better than a silently skipped one.
		j.logger.Warn("failed to read counter, reminding everyone", "error", err)
		submitted = map[member.Handle]struct{}{}
	}

	reminded, failed := 0, 0
	for _, m := range j.registry.All() {
		if _, ok := submitted[m.Handle]; ok {
			continue
		}
		if err := j.notifier.RemindMember(ctx, m); err != nil {
			// Per-recipient failures are logged and swallowed; one closed
			// DM must not stop the rest of the pass.
			j.logger.Warn("failed to remind member", "handle", m.Handle, "error", err)
			failed++
			continue
		}
		reminded++
	}

	if err := j.counter.ResetAll(ctx); err != nil {
		j.logger.Error("failed to reset counter", "error", err)
	}

	j.logger.Info("reminder pass finished",
		"reminded", reminded,
		"failed", failed,
		"duration", time.Since(start))
}
