package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvecircle/dailyproof/internal/application/query"
	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/report"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/domain/submission"
	"github.com/solvecircle/dailyproof/internal/infrastructure/persistence/memory"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

type env struct {
	store        *memory.Store
	registry     *member.Registry
	ledger       *submission.Ledger
	counter      *memory.Counter
	status       *query.SubmissionStatusHandler
	notCompleted *query.NotCompletedHandler
	summary      *query.MonthlySummaryHandler
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
	reporter := report.NewReporter(registry, ledger, store)

	return &env{
		store:        store,
		registry:     registry,
		ledger:       ledger,
		counter:      counter,
		status:       query.NewSubmissionStatusHandler(registry, counter),
		notCompleted: query.NewNotCompletedHandler(reporter, store),
		summary:      query.NewMonthlySummaryHandler(reporter),
	}
}

func (e *env) register(t *testing.T, handle member.Handle, name string) {
	t.Helper()
	_, err := e.registry.Register(context.Background(), handle, name)
	require.NoError(t, err)
}

func (e *env) submit(t *testing.T, date string, handle member.Handle) {
	t.Helper()
	sub, err := submission.NewSubmission(date, handle, "https://proofs/"+string(handle), "problem")
	require.NoError(t, err)
	require.NoError(t, e.ledger.Record(context.Background(), sub))
}

func TestSubmissionStatus_ReadsCounter(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice", "Alice")

	res, err := e.status.Handle(ctx, query.SubmissionStatusQuery{Handle: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.Equal(t, "Alice", res.DisplayName)

	_, err = e.counter.Increment(ctx, "alice")
	require.NoError(t, err)
	_, err = e.counter.Increment(ctx, "alice")
	require.NoError(t, err)

	res, err = e.status.Handle(ctx, query.SubmissionStatusQuery{Handle: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}

func TestSubmissionStatus_NotRegistered(t *testing.T) {
	e := newEnv(t)

	_, err := e.status.Handle(context.Background(), query.SubmissionStatusQuery{Handle: "ghost"})
	assert.ErrorIs(t, err, shared.ErrNotRegistered)
}

func TestNotCompleted_NoPartitionIsNoData(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "Alice")

	_, err := e.notCompleted.Handle(context.Background(), query.NotCompletedQuery{Date: "2026-01-15"})
	assert.ErrorIs(t, err, shared.ErrNoDataForToday)
}

func TestNotCompleted_ListsPendingSorted(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "c", "Charlie")
	e.register(t, "a", "Alice")
	e.register(t, "b", "Bob")
	e.submit(t, "2026-01-15", "b")

	res, err := e.notCompleted.Handle(ctx, query.NotCompletedQuery{Date: "2026-01-15"})
	require.NoError(t, err)
	assert.False(t, res.AllCompleted())
	assert.Equal(t, []string{"Alice", "Charlie"}, res.Pending)
}

func TestNotCompleted_Everyone(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "a", "Alice")
	e.submit(t, "2026-01-15", "a")

	res, err := e.notCompleted.Handle(ctx, query.NotCompletedQuery{Date: "2026-01-15"})
	require.NoError(t, err)
	assert.True(t, res.AllCompleted())
}

func TestNotCompleted_InvalidDate(t *testing.T) {
	e := newEnv(t)

	_, err := e.notCompleted.Handle(context.Background(), query.NotCompletedQuery{Date: "yesterday"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestMonthlySummary_DelegatesToReporter(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "a", "Alice")
	e.submit(t, "2026-01-10", "a")

	m, err := timeutil.ParseMonth("January-2026")
	require.NoError(t, err)

	res, err := e.summary.Handle(ctx, query.MonthlySummaryQuery{Month: m})
	require.NoError(t, err)
	assert.Equal(t, "Summary-January-2026", res.Report.Partition)
	assert.False(t, res.Report.Existed)

	res, err = e.summary.Handle(ctx, query.MonthlySummaryQuery{Month: m})
	require.NoError(t, err)
	assert.True(t, res.Report.Existed)
}
