package member

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/solvecircle/dailyproof/internal/domain/shared"
	"github.com/solvecircle/dailyproof/internal/domain/storage"
)

// RegistryPartition is the durable partition holding registration records.
// Deliberately not day-shaped so it never leaks into day enumeration.
const RegistryPartition = "Registered_Members"

// registryHeader is the first row of a freshly created registry partition.
var registryHeader = storage.Row{"Handle", "Real Name"}

// Registry is the identity store: an append-only durable ledger of
// registration records plus an in-memory mirror. It is an explicitly
// owned state object, constructed at process start, hydrated once from
// the durable store, and mutated only through Register.
//
// Register persists before acknowledging (durability-before-ack): the
// mirror is only updated after the durable append succeeds, so a failed
// append leaves no partial state.
type Registry struct {
	store storage.Store

	mu      sync.RWMutex
	members map[Handle]*Member
}

// NewRegistry creates an empty registry over the durable store.
// Call Hydrate before serving requests.
func NewRegistry(store storage.Store) *Registry {
	return &Registry{
		store:   store,
		members: make(map[Handle]*Member),
	}
}

// Hydrate loads the full registration set into the mirror. Eager load,
// no pagination: community scale is hundreds of members, not millions.
// Creates the registry partition on first run.
func (r *Registry) Hydrate(ctx context.Context) error {
	if err := r.store.CreatePartition(ctx, RegistryPartition); err != nil {
		return shared.WrapError("member", "Hydrate", shared.ErrExternalService,
			"failed to create registry partition", err)
	}

	rows, err := r.store.ReadAllRows(ctx, RegistryPartition)
	if err != nil {
		return shared.WrapError("member", "Hydrate", shared.ErrExternalService,
			"failed to read registry partition", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.members = make(map[Handle]*Member, len(rows))
	for _, row := range rows {
		if len(row) < 2 || isRegistryHeader(row) {
			continue
		}
		h := Handle(row[0])
		if _, seen := r.members[h]; seen {
			// First record wins; later duplicates in the durable set are
			// ignored rather than treated as corruption.
			continue
		}
		r.members[h] = &Member{Handle: h, DisplayName: row[1]}
	}

	return nil
}

// EnsureHeader appends the header row to a brand-new registry partition.
// Called once at first boot; safe to skip when rows already exist.
func (r *Registry) EnsureHeader(ctx context.Context) error {
	rows, err := r.store.ReadAllRows(ctx, RegistryPartition)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	return r.store.AppendRow(ctx, RegistryPartition, registryHeader)
}

// Register inserts a new registration record.
// Returns shared.ErrAlreadyRegistered if the handle is already present;
// the existing display name is left untouched.
func (r *Registry) Register(ctx context.Context, handle Handle, displayName string) (*Member, error) {
	m, err := NewMember(handle, displayName, time.Now())
	if err != nil {
		return nil, shared.WrapError("member", "Register", shared.ErrInvalidInput, "invalid registration", err)
	}

	r.mu.RLock()
	_, exists := r.members[handle]
	r.mu.RUnlock()
	if exists {
		return nil, shared.ErrAlreadyRegistered
	}

	// Durable append first, mirror second.
	row := storage.Row{m.Handle.String(), m.DisplayName}
	if err := r.store.AppendRow(ctx, RegistryPartition, row); err != nil {
		return nil, shared.WrapError("member", "Register", shared.ErrExternalService,
			"failed to persist registration", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.members[handle]; exists {
		// Lost a race on the same loop restart path; first record wins.
		return existing, shared.ErrAlreadyRegistered
	}
	r.members[handle] = m

	return m, nil
}

// Lookup returns the member for a handle, or shared.ErrNotRegistered.
func (r *Registry) Lookup(handle Handle) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[handle]
	if !ok {
		return nil, shared.ErrNotRegistered
	}
	return m, nil
}

// IsRegistered reports whether the handle has a registration record.
func (r *Registry) IsRegistered(handle Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[handle]
	return ok
}

// All returns every registered member, sorted by display name so that
// downstream reports are deterministic for a fixed registry snapshot.
func (r *Registry) All() []*Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}

// Count returns the number of registered members.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// String returns a short description for logging.
func (r *Registry) String() string {
	return fmt.Sprintf("Registry{members: %d}", r.Count())
}

func isRegistryHeader(row storage.Row) bool {
	return len(row) >= 2 && row[0] == registryHeader[0] && row[1] == registryHeader[1]
}
