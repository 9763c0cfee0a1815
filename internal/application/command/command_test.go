package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvecircle/dailyproof/internal/application/command"
	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/domain/submission"
	"github.com/solvecircle/dailyproof/internal/infrastructure/persistence/memory"
)

// fakeRehoster records calls and can be told to fail.
type fakeRehoster struct {
	calls []string
	ref   string
	err   error
}

func (f *fakeRehoster) Rehost(_ context.Context, sourceURL string) (string, error) {
	f.calls = append(f.calls, sourceURL)
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}

type env struct {
	store    *memory.Store
	registry *member.Registry
	ledger   *submission.Ledger
	counter  *memory.Counter
	rehoster *fakeRehoster
	submit   *command.SubmitProofHandler
	register *command.RegisterMemberHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	registry := member.NewRegistry(store)
	require.NoError(t, registry.Hydrate(ctx))
	require.NoError(t, registry.EnsureHeader(ctx))

	ledger := submission.NewLedger(store)
	counter := memory.NewCounter()
	rehoster := &fakeRehoster{ref: "https://proofs.example/stable/abc"}

	return &env{
		store:    store,
		registry: registry,
		ledger:   ledger,
		counter:  counter,
		rehoster: rehoster,
		submit:   command.NewSubmitProofHandler(registry, ledger, counter, rehoster),
		register: command.NewRegisterMemberHandler(registry),
	}
}

func TestRegisterMember_Succeeds(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.register.Handle(ctx, command.RegisterMemberCommand{
		Handle:      "alice",
		DisplayName: "  Alice Anders  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Anders", res.Member.DisplayName)
	assert.True(t, e.registry.IsRegistered("alice"))
}

func TestRegisterMember_Duplicate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.register.Handle(ctx, command.RegisterMemberCommand{Handle: "alice", DisplayName: "Alice"})
	require.NoError(t, err)

	_, err = e.register.Handle(ctx, command.RegisterMemberCommand{Handle: "alice", DisplayName: "Other"})
	assert.ErrorIs(t, err, shared.ErrAlreadyRegistered)
}

func TestRegisterMember_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.register.Handle(ctx, command.RegisterMemberCommand{Handle: "", DisplayName: "Alice"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = e.register.Handle(ctx, command.RegisterMemberCommand{Handle: "alice", DisplayName: "   "})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSubmitProof_HappyPath(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.register.Handle(ctx, command.RegisterMemberCommand{Handle: "alice", DisplayName: "Alice"})
	require.NoError(t, err)

	res, err := e.submit.Handle(ctx, command.SubmitProofCommand{
		Handle:        "alice",
		Date:          "2026-01-15",
		AttachmentURL: "https://cdn.example/tmp/1.png",
		Label:         "two-sum",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", res.DisplayName)
	assert.Equal(t, "two-sum", res.Label)
	assert.Equal(t, "https://proofs.example/stable/abc", res.ArtifactRef)
	assert.Equal(t, 1, res.Count)

	records, err := e.ledger.RecordsOn(ctx, "2026-01-15")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://proofs.example/stable/abc", records[0].ArtifactRef)
}

func TestSubmitProof_CountIncrementsPerSubmission(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.register.Handle(ctx, command.RegisterMemberCommand{Handle: "alice", DisplayName: "Alice"})
	require.NoError(t, err)

	cmd := command.SubmitProofCommand{
		Handle:        "alice",
		Date:          "2026-01-15",
		AttachmentURL: "https://cdn.example/tmp/1.png",
	}

	first, err := e.submit.Handle(ctx, cmd)
	require.NoError(t, err)
	second, err := e.submit.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, submission.DefaultLabel, second.Label)
}

func TestSubmitProof_NotRegistered(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.submit.Handle(ctx, command.SubmitProofCommand{
		Handle:        "ghost",
		Date:          "2026-01-15",
		AttachmentURL: "https://cdn.example/tmp/1.png",
	})
	assert.ErrorIs(t, err, shared.ErrNotRegistered)
	// Not registered is checked before any upload happens.
	assert.Empty(t, e.rehoster.calls)
}

func TestSubmitProof_MissingAttachment(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.submit.Handle(ctx, command.SubmitProofCommand{
		Handle: "alice",
		Date:   "2026-01-15",
	})
	assert.ErrorIs(t, err, shared.ErrMissingAttachment)
}

func TestSubmitProof_UploadFailureLeavesNoLedgerRow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.register.Handle(ctx, command.RegisterMemberCommand{Handle: "alice", DisplayName: "Alice"})
	require.NoError(t, err)

	e.rehoster.err = errors.New("cdn unreachable")

	_, err = e.submit.Handle(ctx, command.SubmitProofCommand{
		Handle:        "alice",
		Date:          "2026-01-15",
		AttachmentURL: "https://cdn.example/tmp/1.png",
	})
	assert.ErrorIs(t, err, shared.ErrExternalService)

	records, lerr := e.ledger.RecordsOn(ctx, "2026-01-15")
	require.NoError(t, lerr)
	assert.Empty(t, records)

	count, cerr := e.counter.Get(ctx, "alice")
	require.NoError(t, cerr)
	assert.Zero(t, count)
}
