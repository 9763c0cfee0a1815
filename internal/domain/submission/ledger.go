package submission

import (
	"context"
	"sort"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/domain/storage"
	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// dayHeader is the first row of a freshly created day partition,
// mirroring the sheet layout the reporting tools expect.
var dayHeader = storage.Row{"Date", "Username", "Screenshot", "Problem Name"}

// Ledger is the per-day submission log over the durable store. Writes
// are append-only; there is no update or delete path, which keeps the
// ledger the audit trail and makes the reporter purely derivative.
type Ledger struct {
	store storage.Store
}

// NewLedger creates a ledger over the durable store.
func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// Record appends a submission to its day partition, creating the
// partition lazily. Creation is idempotent: a concurrent "already
// exists" is success, which makes the create+append pair safe without a
// distributed lock.
func (l *Ledger) Record(ctx context.Context, sub *Submission) error {
	created := false
	if err := l.store.GetPartition(ctx, sub.Date); err != nil {
		if err != storage.ErrPartitionNotFound {
			return shared.WrapError("submission", "Record", shared.ErrExternalService,
				"failed to check day partition", err)
		}
		if err := l.store.CreatePartition(ctx, sub.Date); err != nil {
			return shared.WrapError("submission", "Record", shared.ErrExternalService,
				"failed to create day partition", err)
		}
		created = true
	}

	if created {
		// Best effort: a failed header write must not block the record.
		_ = l.store.AppendRow(ctx, sub.Date, dayHeader)
	}

	row := storage.Row{sub.Date, sub.Handle.String(), sub.ArtifactRef, sub.Label}
	if err := l.store.AppendRow(ctx, sub.Date, row); err != nil {
		return shared.WrapError("submission", "Record", shared.ErrExternalService,
			"failed to append submission", err)
	}

	return nil
}

// SubmittersOn returns the distinct handles with at least one record on
// the given date. A missing partition yields the empty set, not an
// error: "nobody submitted" is a valid answer.
func (l *Ledger) SubmittersOn(ctx context.Context, date string) (map[member.Handle]struct{}, error) {
	rows, err := l.store.ReadAllRows(ctx, date)
	if err != nil {
		if err == storage.ErrPartitionNotFound {
			return map[member.Handle]struct{}{}, nil
		}
		return nil, shared.WrapError("submission", "SubmittersOn", shared.ErrExternalService,
			"failed to read day partition", err)
	}

	out := make(map[member.Handle]struct{})
	for _, row := range rows {
		if len(row) < 2 || isDayHeader(row) {
			continue
		}
		out[member.Handle(row[1])] = struct{}{}
	}
	return out, nil
}

// RecordsOn returns every submission recorded on the given date in
// append order. Missing partition yields an empty slice.
func (l *Ledger) RecordsOn(ctx context.Context, date string) ([]*Submission, error) {
	rows, err := l.store.ReadAllRows(ctx, date)
	if err != nil {
		if err == storage.ErrPartitionNotFound {
			return []*Submission{}, nil
		}
		return nil, shared.WrapError("submission", "RecordsOn", shared.ErrExternalService,
			"failed to read day partition", err)
	}

	out := make([]*Submission, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 || isDayHeader(row) {
			continue
		}
		out = append(out, &Submission{
			Date:        row[0],
			Handle:      member.Handle(row[1]),
			ArtifactRef: row[2],
			Label:       row[3],
		})
	}
	return out, nil
}

// DayPartitions enumerates all day-shaped partition names in
// chronological order. Day-shaped is decided structurally (the name
// parses as a calendar date), never by prefix, so report partitions and
// the member registry are excluded by construction.
func (l *Ledger) DayPartitions(ctx context.Context) ([]string, error) {
	names, err := l.store.ListPartitionNames(ctx)
	if err != nil {
		return nil, shared.WrapError("submission", "DayPartitions", shared.ErrExternalService,
			"failed to list partitions", err)
	}

	days := make([]string, 0, len(names))
	for _, name := range names {
		if timeutil.IsDayKey(name) {
			days = append(days, name)
		}
	}
	sort.Strings(days)
	return days, nil
}

func isDayShaped(name string) bool {
	return timeutil.IsDayKey(name)
}

func isDayHeader(row storage.Row) bool {
	return len(row) >= 2 && row[0] == dayHeader[0] && row[1] == dayHeader[1]
}
