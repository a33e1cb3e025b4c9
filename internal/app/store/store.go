/*
Package store is the entity store: whole collections serialized as JSON and kept
under named keys in a db.Store backend.

Loading a key that was never written seeds it. A backend failure never fails the
caller: the change is kept in a per-process mirror that later loads observe, and
Save reports ErrNotPersisted so the caller can note that durability was lost.
Read-modify-write cycles (Update) are serialized per key.
*/
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"alumnilink/internal/app/db"
	"alumnilink/internal/pkg/logx"
)

// Keys of the persisted collections.
const (
	KeyAlumni   = "alumni-data"
	KeyStudents = "student-data"
	KeyEvents   = "events-data"
	KeyMessages = "messages-data"
	KeyRSVPs    = "event-rsvps-data"
)

// AllKeys lists every key the server writes.
var AllKeys = []string{KeyAlumni, KeyStudents, KeyEvents, KeyMessages, KeyRSVPs}

var (
	// ErrNotPersisted reports that a write only reached the in-memory mirror.
	ErrNotPersisted = errors.New("store: change kept in memory only")

	// ErrNotFound reports that no record has the requested id.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicateID reports a create with an id already present.
	ErrDuplicateID = errors.New("store: duplicate id")
)

// FailureRecorder is notified of every failed backend call.
type FailureRecorder interface {
	StoreFailed(operation, key string)
}

// Store reads and writes whole collections through a backend.
type Store struct {
	backend  db.Store
	recorder FailureRecorder
	log      zerolog.Logger

	mu     sync.Mutex
	mirror map[string][]byte
	dirty  map[string]bool
	locks  map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithFailureRecorder reports backend failures to r.
func WithFailureRecorder(r FailureRecorder) Option {
	return func(s *Store) { s.recorder = r }
}

// New creates a Store over backend.
func New(backend db.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     logx.Component("store"),
		mirror:  make(map[string][]byte),
		dirty:   make(map[string]bool),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying key-value store.
func (s *Store) Backend() db.Store {
	return s.backend
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *Store) failed(operation, key string, err error) {
	s.log.Error().Err(err).Str("operation", operation).Str("key", key).Msg("Entity store backend call failed")
	if s.recorder != nil {
		s.recorder.StoreFailed(operation, key)
	}
}

// readState tells load how to treat a read.
type readState int

const (
	readFound readState = iota
	readMissing
	readFailed
)

// read returns the raw value for key. A key whose last write only reached the
// mirror is served from the mirror; so is any key the backend fails to read.
func (s *Store) read(ctx context.Context, key string) ([]byte, readState) {
	s.mu.Lock()
	if s.dirty[key] {
		data := s.mirror[key]
		s.mu.Unlock()
		return data, readFound
	}
	s.mu.Unlock()

	data, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		s.mu.Lock()
		s.mirror[key] = data
		s.mu.Unlock()
		return data, readFound
	case errors.Is(err, db.ErrNotFound):
		return nil, readMissing
	default:
		s.failed("get", key, err)
		s.mu.Lock()
		defer s.mu.Unlock()
		if data, ok := s.mirror[key]; ok {
			return data, readFound
		}
		return nil, readFailed
	}
}

// write stores data in the mirror, then in the backend.
func (s *Store) write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.mirror[key] = data
	s.mu.Unlock()

	if err := s.backend.Put(ctx, key, data); err != nil {
		s.failed("put", key, err)
		s.mu.Lock()
		s.dirty[key] = true
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotPersisted, key)
	}

	s.mu.Lock()
	delete(s.dirty, key)
	s.mu.Unlock()
	return nil
}

// Reset removes key from the backend and the mirror.
func (s *Store) Reset(ctx context.Context, key string) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	delete(s.mirror, key)
	delete(s.dirty, key)
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, key); err != nil {
		s.failed("delete", key, err)
		return err
	}
	return nil
}

// Load returns the collection stored under key. The first access writes seed and
// returns it. A stored value that does not decode, or a failed read with nothing
// mirrored, yields seed without touching storage.
func Load[T any](ctx context.Context, s *Store, key string, seed func() T) T {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	return load(ctx, s, key, seed)
}

func load[T any](ctx context.Context, s *Store, key string, seed func() T) T {
	data, state := s.read(ctx, key)
	switch state {
	case readMissing:
		value := seed()
		if err := save(ctx, s, key, value); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Seed data not persisted")
		}
		return value
	case readFailed:
		return seed()
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Stored collection is corrupt, using seed data")
		return seed()
	}
	return value
}

// Save overwrites the collection under key with one backend write. The error is
// ErrNotPersisted when only the mirror was updated.
func Save[T any](ctx context.Context, s *Store, key string, value T) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	return save(ctx, s, key, value)
}

func save[T any](ctx context.Context, s *Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.write(ctx, key, data)
}

// Update loads the collection under key, applies fn and saves the result while
// holding the key's lock. When fn fails nothing is written. ErrNotPersisted is
// logged and not returned.
func Update[T any](ctx context.Context, s *Store, key string, seed func() T, fn func(T) (T, error)) (T, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	current := load(ctx, s, key, seed)

	next, err := fn(current)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := save(ctx, s, key, next); err != nil && !errors.Is(err, ErrNotPersisted) {
		var zero T
		return zero, err
	}
	return next, nil
}
