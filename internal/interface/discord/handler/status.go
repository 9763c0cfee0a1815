package handler

import (
	"context"
	"errors"

	"github.com/solvecircle/dailyproof/internal/application/query"
	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/interface/discord/presenter"
)

// StatusHandler handles the /status command.
type StatusHandler struct {
	status *query.SubmissionStatusHandler
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(status *query.SubmissionStatusHandler) *StatusHandler {
	return &StatusHandler{status: status}
}

// Handle reports the member's same-day submission count.
func (h *StatusHandler) Handle(ctx context.Context, handle member.Handle) (string, error) {
	res, err := h.status.Handle(ctx, query.SubmissionStatusQuery{Handle: handle})
	if err != nil {
		if errors.Is(err, shared.ErrNotRegistered) {
			return presenter.NotRegistered(), nil
		}
		return "", err
	}
	return presenter.StatusText(res.DisplayName, res.Count), nil
}
