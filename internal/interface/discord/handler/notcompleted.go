package handler

import (
	"context"
	"errors"
	"time"

	"github.com/solvecircle/dailyproof/internal/application/query"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/interface/discord/presenter"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// NotCompletedHandler handles the /notcompleted admin command.
type NotCompletedHandler struct {
	pending  *query.NotCompletedHandler
	location *time.Location
}

// NewNotCompletedHandler creates a new NotCompletedHandler.
func NewNotCompletedHandler(pending *query.NotCompletedHandler, loc *time.Location) *NotCompletedHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &NotCompletedHandler{pending: pending, location: loc}
}

// Handle lists registered members without a submission today.
func (h *NotCompletedHandler) Handle(ctx context.Context) (string, error) {
	res, err := h.pending.Handle(ctx, query.NotCompletedQuery{Date: timeutil.Today(h.location)})
	if err != nil {
		if errors.Is(err, shared.ErrNoDataForToday) {
			return presenter.NoDataForToday(), nil
		}
		return "", err
	}
	return presenter.NotCompletedList(res.Pending), nil
}
