// Package handler contains the command handlers. Each follows the same
// shape: parse the request, call the application layer, turn the result
// (or a user-facing error) into reply text via the presenter. Only
// internal faults escape as errors; the router logs those and replies
// generically.
package handler

import (
	"context"
	"errors"

	"github.com/solvecircle/dailyproof/internal/application/command"
	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/interface/discord/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER HANDLER
// Two-phase flow: Begin replies with the name prompt and tells the
// router to await the member's next DM; Complete consumes that reply.
// No state is written until Complete succeeds, so a timeout between the
// phases leaves nothing behind.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterHandler handles the /register command.
type RegisterHandler struct {
	registry *member.Registry
	register *command.RegisterMemberHandler
}

// NewRegisterHandler creates a new RegisterHandler.
func NewRegisterHandler(registry *member.Registry, register *command.RegisterMemberHandler) *RegisterHandler {
	return &RegisterHandler{registry: registry, register: register}
}

// BeginResult tells the router whether to await a follow-up reply.
type BeginResult struct {
	// Text is the reply to send now.
	Text string

	// Await is true when the router must capture the member's next
	// plain DM as the registration name.
	Await bool
}

// Begin starts the registration conversation.
func (h *RegisterHandler) Begin(_ context.Context, handle member.Handle) *BeginResult {
	if h.registry.IsRegistered(handle) {
		return &BeginResult{Text: presenter.AlreadyRegistered()}
	}
	return &BeginResult{Text: presenter.RegisterPrompt(), Await: true}
}

// Complete finishes registration with the name the member replied with.
func (h *RegisterHandler) Complete(ctx context.Context, handle member.Handle, reply string) (string, error) {
	res, err := h.register.Handle(ctx, command.RegisterMemberCommand{
		Handle:      handle,
		DisplayName: reply,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrAlreadyRegistered):
			return presenter.AlreadyRegistered(), nil
		case errors.Is(err, shared.ErrInvalidInput):
			// An empty or whitespace name; ask again from the top.
			return presenter.NameRequired(), nil
		default:
			return "", err
		}
	}
	return presenter.RegisterDone(res.Member.DisplayName), nil
}

// Timeout is the reply for an expired name prompt.
func (h *RegisterHandler) Timeout() string {
	return presenter.RegisterTimeout()
}
