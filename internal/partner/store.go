package partner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/storage"
)

// Store owns the partner collection of a session. Every successful mutation
// writes the whole collection to the backing store through an ordered write
// queue; the in-memory collection stays authoritative when a write fails.
type Store struct {
	// NewID generates partner ids. Defaults to random UUIDs.
	NewID func() string

	mu       sync.Mutex
	partners []Partner
	kv       storage.KeyValue
	writer   *storage.Writer
}

// NewStore creates an empty store persisting to kv under config.KeyPartners.
// Call Load to pick up a previous session and Close on shutdown.
func NewStore(kv storage.KeyValue) *Store {
	return NewStoreWithTimeout(kv, config.PersistTimeout)
}

// NewStoreWithTimeout is NewStore with a custom bound on each write.
func NewStoreWithTimeout(kv storage.KeyValue, timeout time.Duration) *Store {
	return &Store{
		NewID:    uuid.NewString,
		partners: []Partner{},
		kv:       kv,
		writer:   storage.NewWriter(kv, config.KeyPartners, timeout),
	}
}

// Load replaces the in-memory collection with the persisted one. Absent,
// unreadable or corrupt data leaves the store empty; it is logged and never
// returned as an error.
func (s *Store) Load(ctx context.Context) []Partner {
	log := slog.With(config.LogKeyComponent, config.CompStore)

	loaded := []Partner{}
	blob, ok, err := storage.Read(ctx, s.kv, config.KeyPartners, config.LoadTimeout)
	switch {
	case err != nil:
		log.WarnContext(ctx, config.MsgLoadFailed, config.LogKeyError, &PersistenceError{Op: "load", Err: err})
	case !ok:
		log.InfoContext(ctx, config.MsgLoadEmpty)
	default:
		decoded, err := Decode(blob)
		if err != nil {
			log.WarnContext(ctx, config.MsgLoadFailed, config.LogKeyError, err)
		} else {
			loaded = decoded
			log.InfoContext(ctx, config.MsgLoaded, config.LogKeyCount, len(loaded))
		}
	}

	s.mu.Lock()
	s.partners = loaded
	out := s.snapshotLocked()
	s.mu.Unlock()
	return out
}

// List returns every partner in insertion order.
func (s *Store) List() []Partner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the partner with the given id.
func (s *Store) Get(id string) (Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.partners[i].Clone(), nil
	}
	return Partner{}, &NotFoundError{ID: id}
}

// Create appends a new partner built from d with a fresh id. Any id in the
// draft is ignored. A *PersistenceError is returned together with the created
// partner when only the write failed.
func (s *Store) Create(ctx context.Context, d Draft) (Partner, error) {
	p := d.Apply(Partner{PreferredName: FirstName})
	if err := p.Validate(); err != nil {
		return Partner{}, err
	}

	s.mu.Lock()
	p.ID = s.freshIDLocked()
	s.partners = append(s.partners, p)
	pending := s.persistLocked(ctx)
	s.mu.Unlock()

	slog.DebugContext(ctx, config.MsgCreated,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, p.ID)
	return p.Clone(), s.await(ctx, pending, "create")
}

// Update merges d over the partner with the given id. Unknown ids fail with a
// *NotFoundError and leave the collection untouched.
func (s *Store) Update(ctx context.Context, id string, d Draft) (Partner, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Partner{}, &NotFoundError{ID: id}
	}

	updated := d.Apply(s.partners[i])
	updated.ID = id
	if err := updated.Validate(); err != nil {
		s.mu.Unlock()
		return Partner{}, err
	}

	s.partners[i] = updated
	pending := s.persistLocked(ctx)
	s.mu.Unlock()

	slog.DebugContext(ctx, config.MsgUpdated,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, id)
	return updated.Clone(), s.await(ctx, pending, "update")
}

// Delete removes the partner with the given id and reports whether it
// existed. Deleting an unknown id changes nothing, writes nothing and is not
// an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		slog.InfoContext(ctx, config.MsgDeleteMissing,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyID, id)
		return false, nil
	}

	s.partners = append(s.partners[:i:i], s.partners[i+1:]...)
	pending := s.persistLocked(ctx)
	s.mu.Unlock()

	slog.DebugContext(ctx, config.MsgDeleted,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, id)
	return true, s.await(ctx, pending, "delete")
}

// Close waits for queued writes and stops the write queue.
func (s *Store) Close() error {
	return s.writer.Close()
}

// persistLocked snapshots the collection and queues it. It must run under
// s.mu so that queue order matches mutation order; Submit never blocks.
func (s *Store) persistLocked(ctx context.Context) <-chan error {
	blob, err := Encode(s.partners)
	if err != nil {
		failed := make(chan error, 1)
		failed <- err
		return failed
	}
	return s.writer.Submit(ctx, blob)
}

// await waits for the queued write. The writer answers within its timeout,
// so this returns early only when ctx ends first.
func (s *Store) await(ctx context.Context, pending <-chan error, op string) error {
	var err error
	select {
	case err = <-pending:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}
	perr := &PersistenceError{Op: op, Err: err}
	slog.WarnContext(ctx, config.MsgPersistFailed,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyError, perr)
	return perr
}

func (s *Store) indexLocked(id string) int {
	for i := range s.partners {
		if s.partners[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) freshIDLocked() string {
	for {
		id := s.NewID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) snapshotLocked() []Partner {
	out := make([]Partner, 0, len(s.partners))
	for _, p := range s.partners {
		out = append(out, p.Clone())
	}
	return out
}
