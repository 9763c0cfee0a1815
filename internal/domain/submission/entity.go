// Package submission contains the per-day submission ledger: an
// append-only log of proof-of-work records, one durable partition per
// calendar day, plus the volatile daily counter contract.
package submission

import (
	"context"
	"errors"
	"strings"

	"github.com/solvecircle/dailyproof/internal/domain/member"
)

// DefaultLabel is recorded when the member submits without naming the
// problem they solved.
const DefaultLabel = "No Name"

// Submission is one proof-of-work record. Immutable once written; a
// member may have any number of records per day.
type Submission struct {
	// Date is the day-partition key (YYYY-MM-DD).
	Date string

	// Handle identifies the submitting member.
	Handle member.Handle

	// ArtifactRef is the stable, rehosted proof reference. Never the
	// transient transport URL.
	ArtifactRef string

	// Label names the solved problem.
	Label string
}

var (
	// ErrInvalidDate - date is not a day key.
	ErrInvalidDate = errors.New("invalid submission date: must be YYYY-MM-DD")

	// ErrEmptyArtifact - the proof reference is missing.
	ErrEmptyArtifact = errors.New("submission requires an artifact reference")
)

// NewSubmission creates a record with validation. An empty label becomes
// DefaultLabel.
func NewSubmission(date string, handle member.Handle, artifactRef, label string) (*Submission, error) {
	if !isDayShaped(date) {
		return nil, ErrInvalidDate
	}
	if !handle.IsValid() {
		return nil, member.ErrInvalidHandle
	}
	if strings.TrimSpace(artifactRef) == "" {
		return nil, ErrEmptyArtifact
	}

	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultLabel
	}

	return &Submission{
		Date:        date,
		Handle:      handle,
		ArtifactRef: artifactRef,
		Label:       label,
	}, nil
}

// DailyCounter is the volatile per-day tally of submissions per member.
// It is a best-effort same-day mirror of the ledger, never reconciled
// against it; the ledger stays authoritative. ResetAll is a calendar
// boundary event fired exactly once per reminder pass.
type DailyCounter interface {
	// Increment adds one and returns the new total (first call returns 1).
	Increment(ctx context.Context, handle member.Handle) (int, error)

	// Get returns the current tally, 0 if absent.
	Get(ctx context.Context, handle member.Handle) (int, error)

	// Submitted returns the set of handles with a non-zero tally.
	Submitted(ctx context.Context) (map[member.Handle]struct{}, error)

	// ResetAll clears every entry.
	ResetAll(ctx context.Context) error
}
