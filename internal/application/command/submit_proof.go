package command

import (
	"context"
	"strings"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/domain/submission"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT PROOF COMMAND
// The core write path: rehost the proof attachment to a stable artifact
// reference, append the ledger row, bump the volatile daily counter.
// Ordering matters: a failed rehost must leave no ledger row, and a
// failed counter bump must not undo a durable ledger row.
// ══════════════════════════════════════════════════════════════════════════════

// ArtifactRehoster copies a transient attachment URL to durable storage
// and returns the stable reference to record in the ledger.
type ArtifactRehoster interface {
	Rehost(ctx context.Context, sourceURL string) (string, error)
}

// SubmitProofCommand contains the data to record one submission.
type SubmitProofCommand struct {
	// Handle is the platform username of the submitting member.
	Handle member.Handle

	// Date is the day-partition key (YYYY-MM-DD) in the configured
	// timezone. The transport layer computes it so that "today" is
	// decided once per message, not once per storage call.
	Date string

	// AttachmentURL is the transient URL of the first attachment.
	AttachmentURL string

	// Label names the solved problem. Empty becomes the default label.
	Label string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SubmitProofCommand) Validate() error {
	if !c.Handle.IsValid() {
		return shared.WrapError("submission", "Submit", shared.ErrInvalidInput,
			"invalid handle", member.ErrInvalidHandle)
	}
	if !timeutil.IsDayKey(c.Date) {
		return shared.WrapError("submission", "Submit", shared.ErrInvalidInput,
			"invalid date", submission.ErrInvalidDate)
	}
	if strings.TrimSpace(c.AttachmentURL) == "" {
		return shared.ErrMissingAttachment
	}
	return nil
}

// SubmitProofResult contains the result of recording a submission.
type SubmitProofResult struct {
	// DisplayName is the registered real name of the member.
	DisplayName string

	// Label is the label actually recorded (default applied).
	Label string

	// ArtifactRef is the stable rehosted reference.
	ArtifactRef string

	// Count is the member's same-day submission count after this one.
	// Zero means the counter was unavailable; the ledger row still holds.
	Count int
}

// SubmitProofHandler handles the SubmitProofCommand.
type SubmitProofHandler struct {
	registry *member.Registry
	ledger   *submission.Ledger
	counter  submission.DailyCounter
	rehoster ArtifactRehoster
}

// NewSubmitProofHandler creates a new SubmitProofHandler.
func NewSubmitProofHandler(
	registry *member.Registry,
	ledger *submission.Ledger,
	counter submission.DailyCounter,
	rehoster ArtifactRehoster,
) *SubmitProofHandler {
	return &SubmitProofHandler{
		registry: registry,
		ledger:   ledger,
		counter:  counter,
		rehoster: rehoster,
	}
}

// Handle executes the submit proof command.
func (h *SubmitProofHandler) Handle(ctx context.Context, cmd SubmitProofCommand) (*SubmitProofResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	m, err := h.registry.Lookup(cmd.Handle)
	if err != nil {
		return nil, err
	}

	ref, err := h.rehoster.Rehost(ctx, cmd.AttachmentURL)
	if err != nil {
		return nil, shared.WrapError("artifact", "Rehost", shared.ErrExternalService,
			"artifact upload failed", err)
	}

	sub, err := submission.NewSubmission(cmd.Date, cmd.Handle, ref, cmd.Label)
	if err != nil {
		return nil, shared.WrapError("submission", "Submit", shared.ErrInvalidInput,
			"invalid submission", err)
	}

	if err := h.ledger.Record(ctx, sub); err != nil {
		return nil, err
	}

	result := &SubmitProofResult{
		DisplayName: m.DisplayName,
		Label:       sub.Label,
		ArtifactRef: ref,
	}

	// Counter is a best-effort same-day cache; the ledger row is already
	// durable, so a counter fault must not fail the command.
	if count, err := h.counter.Increment(ctx, cmd.Handle); err == nil {
		result.Count = count
	}

	return result, nil
}
