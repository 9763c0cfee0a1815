// Package presenter centralizes every user-visible string of the bot.
// Handlers and the router compose replies exclusively through these
// helpers, so tone and wording live in one place.
package presenter

import (
	"fmt"
	"strings"

	"github.com/solvecircle/dailyproof/internal/domain/report"
)

// ─────────────────────────────────────────────────────────────────────────────
// Registration
// ─────────────────────────────────────────────────────────────────────────────

// RegisterPrompt asks for the member's real full name.
func RegisterPrompt() string {
	return "Please reply with your real full name within 60 seconds."
}

// RegisterDone confirms a completed registration.
func RegisterDone(displayName string) string {
	return fmt.Sprintf("You are registered as %s. Welcome aboard!", displayName)
}

// RegisterTimeout tells the member the reply window closed.
func RegisterTimeout() string {
	return "Time ran out. Send /register again when you are ready."
}

// NameRequired rejects an empty registration reply.
func NameRequired() string {
	return "That name looks empty. Send /register to try again."
}

// AlreadyRegistered tells the member registration is one-time.
func AlreadyRegistered() string {
	return "You are already registered."
}

// NotRegistered points an unregistered member at /register.
func NotRegistered() string {
	return "You are not registered yet. Send /register first."
}

// ─────────────────────────────────────────────────────────────────────────────
// Submissions
// ─────────────────────────────────────────────────────────────────────────────

// MissingAttachment reminds the member a proof screenshot is required.
func MissingAttachment() string {
	return "Attach a screenshot of your solution to submit."
}

// SubmitAck confirms a recorded submission with the same-day count.
func SubmitAck(label string, count int) string {
	if count > 0 {
		return fmt.Sprintf("Recorded %q. That is submission #%d today.", label, count)
	}
	return fmt.Sprintf("Recorded %q.", label)
}

// UploadFailed tells the member the proof could not be stored.
func UploadFailed() string {
	return "Could not store your screenshot. Nothing was recorded; please try again."
}

// StatusText reports the member's same-day counter.
func StatusText(displayName string, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%s, you have no submissions today.", displayName)
	case 1:
		return fmt.Sprintf("%s, you have 1 submission today.", displayName)
	default:
		return fmt.Sprintf("%s, you have %d submissions today.", displayName, count)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reports
// ─────────────────────────────────────────────────────────────────────────────

// NotCompletedList lists members without a submission today.
func NotCompletedList(names []string) string {
	if len(names) == 0 {
		return EveryoneCompleted()
	}
	var b strings.Builder
	b.WriteString("Not completed today:\n")
	for _, name := range names {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// EveryoneCompleted is the happy case of /notcompleted.
func EveryoneCompleted() string {
	return "Everyone has completed today. Well done!"
}

// NoDataForToday is shown when no submissions exist for the day at all.
func NoDataForToday() string {
	return "No submissions recorded today yet."
}

// SummaryReady announces a monthly report.
func SummaryReady(rep *report.MonthlyReport) string {
	if rep.Existed {
		return fmt.Sprintf("Report %s already exists.", rep.Partition)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Report %s generated.\n", rep.Partition)
	for _, rec := range rep.Records {
		fmt.Fprintf(&b, "- %s: %d/%d days (%.1f%%)\n",
			rec.DisplayName, rec.DaysSubmitted, rec.TotalDays, rec.ConsistencyPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BadMonth explains the accepted month formats.
func BadMonth() string {
	return "Could not parse that month. Use a form like January-2026 or 2026-01."
}

// ─────────────────────────────────────────────────────────────────────────────
// Access and errors
// ─────────────────────────────────────────────────────────────────────────────

// AdminOnly rejects a non-administrator.
func AdminOnly() string {
	return "That command is for administrators."
}

// DMOnly asks the member to use a direct message.
func DMOnly() string {
	return "Send me that command in a direct message."
}

// UnknownCommand is the fallback reply.
func UnknownCommand() string {
	return "Unknown command. Send /help for the list."
}

// InternalError is the generic failure reply. Details go to the log,
// never to the channel.
func InternalError() string {
	return "Something went wrong on my side. Please try again."
}

// ─────────────────────────────────────────────────────────────────────────────
// Reminders and help
// ─────────────────────────────────────────────────────────────────────────────

// ReminderText is the daily nudge sent by the scheduler.
func ReminderText(displayName string) string {
	return fmt.Sprintf("%s, you have not submitted a solution today. There is still time!", displayName)
}

// Help lists the command surface.
func Help() string {
	return strings.Join([]string{
		"Commands:",
		"/register - register with your real name (DM only)",
		"/submit [problem] - submit a proof screenshot (DM only)",
		"/status - your submission count for today (DM only)",
		"/notcompleted - who has not submitted today (admin)",
		"/summarize [month] - monthly consistency report (admin)",
		"/help - this message",
	}, "\n")
}
