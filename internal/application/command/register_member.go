// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"strings"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER MEMBER COMMAND
// Records a member's handle and real full name in the durable registry.
// The conversational part of registration (prompting for the name and
// waiting for the reply) lives at the transport layer; by the time this
// command runs both values are known.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterMemberCommand contains the data to register a member.
type RegisterMemberCommand struct {
	// Handle is the platform username of the member.
	Handle member.Handle

	// DisplayName is the real full name the member replied with.
	DisplayName string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RegisterMemberCommand) Validate() error {
	if !c.Handle.IsValid() {
		return shared.WrapError("member", "Register", shared.ErrInvalidInput,
			"invalid handle", member.ErrInvalidHandle)
	}
	if strings.TrimSpace(c.DisplayName) == "" {
		return shared.WrapError("member", "Register", shared.ErrInvalidInput,
			"display name is required", member.ErrInvalidDisplayName)
	}
	return nil
}

// RegisterMemberResult contains the result of a registration.
type RegisterMemberResult struct {
	// Member is the newly registered member.
	Member *member.Member
}

// RegisterMemberHandler handles the RegisterMemberCommand.
type RegisterMemberHandler struct {
	registry *member.Registry
}

// NewRegisterMemberHandler creates a new RegisterMemberHandler.
func NewRegisterMemberHandler(registry *member.Registry) *RegisterMemberHandler {
	return &RegisterMemberHandler{registry: registry}
}

// Handle executes the register member command. Registration is
// durability-before-ack: the registry appends to the durable partition
// before updating its mirror, so a success here means the record survives
// a restart. Duplicate handles surface as ErrAlreadyRegistered and the
// first recorded name stays authoritative.
func (h *RegisterMemberHandler) Handle(ctx context.Context, cmd RegisterMemberCommand) (*RegisterMemberResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	m, err := h.registry.Register(ctx, cmd.Handle, strings.TrimSpace(cmd.DisplayName))
	if err != nil {
		return nil, err
	}

	return &RegisterMemberResult{Member: m}, nil
}
