package settings

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/goliatone/go-settings/pkg/activity"
	"github.com/goliatone/go-settings/pkg/params"
	"github.com/google/uuid"
)

// Store is the validated option store. It wraps a raw params.Backend with the
// catalog's domains: writes are checked strictly, reads are coerced by the
// resolver. Every mutation bumps the generation.
type Store struct {
	mu         sync.RWMutex
	catalog    *Catalog
	backend    params.Backend
	locks      map[string]string
	generation uint64
	emitter    *activity.Emitter
	actorID    string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithActivityEmitter reports mutations through emitter.
func WithActivityEmitter(emitter *activity.Emitter) StoreOption {
	return func(s *Store) {
		s.emitter = emitter
	}
}

// WithActivityHooks reports mutations to hooks on the default channel.
func WithActivityHooks(hooks ...activity.ActivityHook) StoreOption {
	return func(s *Store) {
		s.emitter = activity.NewEmitter(activity.Hooks(hooks), activity.Config{Enabled: true})
	}
}

// WithActor stamps events with actorID.
func WithActor(actorID string) StoreOption {
	return func(s *Store) {
		s.actorID = actorID
	}
}

// NewStore binds catalog to backend. A nil backend selects an in-memory one.
func NewStore(catalog *Catalog, backend params.Backend, opts ...StoreOption) (*Store, error) {
	if catalog == nil {
		return nil, fmt.Errorf("settings: catalog is required")
	}
	if backend == nil {
		backend = params.NewMemoryBackend(nil)
	}
	s := &Store{
		catalog:    catalog,
		backend:    backend,
		locks:      map[string]string{},
		generation: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Catalog returns the catalog the store validates against.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// Generation increases on every successful mutation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Get returns the raw stored value of id.
func (s *Store) Get(id string) (string, bool, error) {
	if _, err := s.catalog.mustLookup("get", id); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok, err := s.backend.Get(id)
	if err != nil {
		return "", false, &OptionError{Op: "get", ID: id, Err: err}
	}
	return value, ok, nil
}

// GetBool reports whether id holds a truthy value. Absent, empty and
// unreadable keys read as false.
func (s *Store) GetBool(id string) bool {
	raw, ok, err := s.Get(id)
	if err != nil || !ok || raw == "" {
		return false
	}
	d, _ := s.catalog.Lookup(id)
	v, _ := d.Coerce(raw)
	return v.Bool()
}

// Value decodes id through its descriptor, falling back to the default when
// the key is absent and coercing out-of-domain content.
func (s *Store) Value(id string) (Value, Source, error) {
	d, err := s.catalog.mustLookup("get", id)
	if err != nil {
		return Value{}, "", err
	}
	raw, ok, err := s.Get(id)
	if err != nil {
		return Value{}, "", err
	}
	v, source := decode(d, raw, ok)
	return v, source, nil
}

// Set stores raw after strict validation. Locked options reject writes.
func (s *Store) Set(ctx context.Context, id, raw string) error {
	d, err := s.catalog.mustLookup("set", id)
	if err != nil {
		return err
	}
	if _, err := d.Parse(raw); err != nil {
		return &OptionError{Op: "set", ID: id, Value: raw, Err: err}
	}
	return s.write(ctx, "set", id, raw, false, activity.SourceOperator, true)
}

// SetBool stores b as "1" or "0".
func (s *Store) SetBool(ctx context.Context, id string, b bool) error {
	return s.Set(ctx, id, BoolValue(b).Raw())
}

// SetInt stores n as a decimal integer.
func (s *Store) SetInt(ctx context.Context, id string, n int) error {
	return s.Set(ctx, id, strconv.Itoa(n))
}

// Remove deletes the key of id. Locked options reject removal.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.catalog.mustLookup("remove", id); err != nil {
		return err
	}
	return s.write(ctx, "remove", id, "", true, activity.SourceOperator, true)
}

// Restore puts back a previously observed state of id verbatim. present false
// removes the key. Locks are ignored.
func (s *Store) Restore(ctx context.Context, id, raw string, present bool) error {
	if _, err := s.catalog.mustLookup("restore", id); err != nil {
		return err
	}
	return s.write(ctx, "restore", id, raw, !present, activity.SourceRollback, false)
}

// Apply performs writes computed by the resolver. They bypass locks because
// clearing a locked option is one of the things a resolution does.
func (s *Store) Apply(ctx context.Context, writes []Write) error {
	for _, w := range writes {
		d, err := s.catalog.mustLookup("apply", w.ID)
		if err != nil {
			return err
		}
		if !w.Remove {
			if _, err := d.Parse(w.Raw); err != nil {
				return &OptionError{Op: "apply", ID: w.ID, Value: w.Raw, Err: err}
			}
		}
		if err := s.write(ctx, "apply", w.ID, w.Raw, w.Remove, activity.SourceResolver, false); err != nil {
			return err
		}
	}
	return nil
}

// Lock rejects further operator writes to id until Unlock.
func (s *Store) Lock(ctx context.Context, id, reason string) error {
	if _, err := s.catalog.mustLookup("lock", id); err != nil {
		return err
	}
	s.mu.Lock()
	prev, already := s.locks[id]
	s.locks[id] = reason
	gen := s.generation
	s.mu.Unlock()
	if already && prev == reason {
		return nil
	}
	s.emit(ctx, activity.OptionLocked(id, reason).
		WithActor(s.actorID).
		WithSession(activity.SessionContext{Generation: gen}))
	return nil
}

// Unlock lifts a lock on id. Unlocking an unlocked option is a no-op.
func (s *Store) Unlock(id string) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}

// Locked reports whether id is locked and why.
func (s *Store) Locked(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reason, ok := s.locks[id]
	return reason, ok
}

// Locks returns a copy of every active lock.
func (s *Store) Locks() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.locks))
	for k, v := range s.locks {
		out[k] = v
	}
	return out
}

// Snapshot copies the stored values of every catalog option.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw := make(map[string]string, s.catalog.Len())
	for _, id := range s.catalog.order {
		value, ok, err := s.backend.Get(id)
		if err != nil {
			return Snapshot{}, &OptionError{Op: "snapshot", ID: id, Err: err}
		}
		if ok {
			raw[id] = value
		}
	}
	return Snapshot{
		ID:         uuid.NewString(),
		Generation: s.generation,
		raw:        raw,
	}, nil
}

func (s *Store) write(ctx context.Context, op, id, raw string, remove bool, source string, checkLock bool) error {
	s.mu.Lock()
	if checkLock {
		if _, locked := s.locks[id]; locked {
			s.mu.Unlock()
			return &OptionError{Op: op, ID: id, Value: raw, Err: ErrOptionLocked}
		}
	}
	old, existed, err := s.backend.Get(id)
	if err != nil {
		s.mu.Unlock()
		return &OptionError{Op: op, ID: id, Err: err}
	}
	if remove {
		err = s.backend.Delete(id)
	} else {
		err = s.backend.Put(id, raw)
	}
	if err != nil {
		s.mu.Unlock()
		return &OptionError{Op: op, ID: id, Value: raw, Err: err}
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	var prev *string
	if existed {
		prev = &old
	}
	event := activity.OptionUpdated(id, prev, raw)
	if remove {
		event = activity.OptionRemoved(id, prev)
	}
	s.emit(ctx, event.
		WithSource(source).
		WithActor(s.actorID).
		WithSession(activity.SessionContext{Generation: gen}))
	return nil
}

func (s *Store) emit(ctx context.Context, event activity.Event) {
	if s.emitter == nil {
		return
	}
	_ = s.emitter.Emit(ctx, event)
}
