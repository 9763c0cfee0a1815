package handler

import (
	"context"
	"errors"
	"time"

	"github.com/solvecircle/dailyproof/internal/application/command"
	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/interface/discord/presenter"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitHandler handles the /submit command.
type SubmitHandler struct {
	submit   *command.SubmitProofHandler
	location *time.Location
}

// NewSubmitHandler creates a new SubmitHandler.
func NewSubmitHandler(submit *command.SubmitProofHandler, loc *time.Location) *SubmitHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SubmitHandler{submit: submit, location: loc}
}

// Handle records a proof submission. attachmentURL is the first message
// attachment, empty when there was none; label is the optional problem
// name from the command arguments.
func (h *SubmitHandler) Handle(ctx context.Context, handle member.Handle, attachmentURL, label string) (string, error) {
	res, err := h.submit.Handle(ctx, command.SubmitProofCommand{
		Handle:        handle,
		Date:          timeutil.Today(h.location),
		AttachmentURL: attachmentURL,
		Label:         label,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotRegistered):
			return presenter.NotRegistered(), nil
		case errors.Is(err, shared.ErrMissingAttachment):
			return presenter.MissingAttachment(), nil
		case errors.Is(err, shared.ErrExternalService):
			return presenter.UploadFailed(), nil
		default:
			return "", err
		}
	}
	return presenter.SubmitAck(res.Label, res.Count), nil
}
