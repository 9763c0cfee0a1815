package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counting job" }
func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestDailySchedule_NextIsStrictlyAfter(t *testing.T) {
	loc := time.UTC
	s := NewDailySchedule(21, 0, loc)

	before := time.Date(2026, time.January, 15, 20, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.January, 15, 21, 0, 0, 0, loc), s.Next(before))

	// Exactly at the firing time rolls to tomorrow.
	at := time.Date(2026, time.January, 15, 21, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.January, 16, 21, 0, 0, 0, loc), s.Next(at))

	after := time.Date(2026, time.January, 15, 21, 1, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.January, 16, 21, 0, 0, 0, loc), s.Next(after))
}

func TestMonthlyFirstSchedule_Next(t *testing.T) {
	loc := time.UTC
	s := NewMonthlyFirstSchedule(0, 5, loc)

	mid := time.Date(2026, time.January, 15, 12, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 5, 0, 0, loc), s.Next(mid))

	// December rolls into the next year.
	dec := time.Date(2026, time.December, 2, 0, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 5, 0, 0, loc), s.Next(dec))

	// On the 1st but past the firing time, next month.
	first := time.Date(2026, time.February, 1, 0, 10, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 5, 0, 0, loc), s.Next(first))
}

func TestScheduler_RegisterRejectsDuplicates(t *testing.T) {
	s := NewScheduler(nil)
	job := &countingJob{name: "j"}

	require.NoError(t, s.Register(job, IntervalSchedule{Every: time.Hour}))
	assert.Error(t, s.Register(job, IntervalSchedule{Every: time.Hour}))
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(nil)
	job := &countingJob{name: "j"}
	require.NoError(t, s.Register(job, IntervalSchedule{Every: time.Hour}))

	require.NoError(t, s.RunNow(context.Background(), "j"))
	assert.Equal(t, int64(1), job.runs.Load())

	assert.Error(t, s.RunNow(context.Background(), "unknown"))
}

func TestScheduler_FiresDueJobs(t *testing.T) {
	s := NewScheduler(nil)
	job := &countingJob{name: "j"}

	// The fake clock starts before the firing and jumps past it.
	var fired atomic.Bool
	base := time.Date(2026, time.January, 15, 20, 59, 59, 0, time.UTC)
	s.clock = func() time.Time {
		if fired.Load() {
			return base.Add(2 * time.Second)
		}
		return base
	}

	require.NoError(t, s.Register(job, NewDailySchedule(21, 0, time.UTC)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	fired.Store(true)

	require.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)
}
