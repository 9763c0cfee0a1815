package memory

import (
	"context"
	"sync"

	"github.com/solvecircle/dailyproof/internal/domain/member"
)

// Counter is the default daily counter: a volatile per-handle tally of
// today's submissions. It is a same-day cache, not a source of truth:
// the submission ledger stays authoritative, the counter starts empty on
// process restart, and it is reset exactly once per reminder firing.
// A mid-day restart therefore under-reports /status until the next
// reset; this divergence is deliberate and documented.
type Counter struct {
	mu     sync.Mutex
	counts map[member.Handle]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{
		counts: make(map[member.Handle]int),
	}
}

// Increment adds one to the handle's tally and returns the new total.
func (c *Counter) Increment(ctx context.Context, handle member.Handle) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[handle]++
	return c.counts[handle], nil
}

// Get returns the handle's tally, 0 if absent.
func (c *Counter) Get(ctx context.Context, handle member.Handle) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[handle], nil
}

// Submitted returns the set of handles with a non-zero tally.
func (c *Counter) Submitted(ctx context.Context) (map[member.Handle]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[member.Handle]struct{}, len(c.counts))
	for h, n := range c.counts {
		if n > 0 {
			out[h] = struct{}{}
		}
	}
	return out, nil
}

// ResetAll clears every entry. Called exactly once per reminder firing,
// never otherwise.
func (c *Counter) ResetAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts = make(map[member.Handle]int)
	return nil
}
