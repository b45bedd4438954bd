package repository

import (
	"context"
	"errors"
	"sync"

	"heystack-be/internal/pkg/logger"
	"heystack-be/internal/repository/contract"
	"heystack-be/internal/repository/memory"
	"heystack-be/pkg/store"
)

// SessionStore is the session mapping the chat service works against
type SessionStore interface {
	Get(sender string) *store.Session
	Put(sender string, s *store.Session)
	WithSession(sender string, fn func(s *store.Session) error) error
	Lookup(sender string) (*store.Session, bool)
	Senders() []string
	FlushAll(ctx context.Context) error
	Close(ctx context.Context) error
}

// CachedSessionStore serves sessions from the in-memory repository and
// writes the sessions changed since the last successful flush to its
// backend on FlushAll.
//
// Turns for one sender are serialised by WithSession; different senders
// never share a lock. Get and Put hand out and take copies, so a caller
// holding a session cannot mutate the cached one behind the store's back.
type CachedSessionStore struct {
	cache   *memory.SessionRepository
	backend contract.SessionBackend
	logger  logger.ILogger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	dirtyMu sync.Mutex
	dirty   map[string]struct{}

	flushMu sync.Mutex
	closed  bool
}

// NewSessionStore loads the backend into memory. Corrupt persisted state is
// logged and discarded; whatever the backend could decode is kept.
func NewSessionStore(ctx context.Context, backend contract.SessionBackend, log logger.ILogger) (*CachedSessionStore, error) {
	sessions, err := backend.Load(ctx)
	switch {
	case errors.Is(err, contract.ErrCorruptState):
		log.Warn(logger.ModuleStore, "Discarding corrupt session state", map[string]interface{}{
			"error": err.Error(),
			"kept":  len(sessions),
		})
	case err != nil:
		return nil, err
	}

	cache := memory.NewSessionRepository()
	cache.Replace(sessions)

	log.Info(logger.ModuleStore, "Session store loaded", map[string]interface{}{
		"sessions": cache.Count(),
	})

	return &CachedSessionStore{
		cache:   cache,
		backend: backend,
		logger:  log,
		locks:   make(map[string]*sync.Mutex),
		dirty:   make(map[string]struct{}),
	}, nil
}

// Get returns a copy of the session of sender, creating the first-contact
// session when the sender is unknown
func (s *CachedSessionStore) Get(sender string) *store.Session {
	if sess, ok := s.cache.Get(sender); ok {
		return sess
	}
	sess := store.NewSession()
	s.cache.Save(sender, sess)
	s.markDirty(sender)
	return sess.Clone()
}

// Lookup is Get without creation
func (s *CachedSessionStore) Lookup(sender string) (*store.Session, bool) {
	return s.cache.Get(sender)
}

func (s *CachedSessionStore) Put(sender string, sess *store.Session) {
	s.cache.Save(sender, sess)
	s.markDirty(sender)
}

// WithSession runs fn on the session of sender as one read-modify-write
// unit. The session is stored if fn returns nil, discarded otherwise.
func (s *CachedSessionStore) WithSession(sender string, fn func(sess *store.Session) error) error {
	mu := s.lockFor(sender)
	mu.Lock()
	defer mu.Unlock()

	sess := s.Get(sender)
	if err := fn(sess); err != nil {
		return err
	}
	s.cache.Save(sender, sess)
	s.markDirty(sender)
	return nil
}

func (s *CachedSessionStore) lockFor(sender string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[sender]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[sender] = mu
	}
	return mu
}

func (s *CachedSessionStore) markDirty(senders ...string) {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	for _, sender := range senders {
		s.dirty[sender] = struct{}{}
	}
}

// takeDirty resets the changed set and copies those sessions out of the
// cache. The set is swapped before the cache is read, so a concurrent Put
// is either in this batch or marked for the next one.
func (s *CachedSessionStore) takeDirty() map[string]*store.Session {
	s.dirtyMu.Lock()
	senders := s.dirty
	s.dirty = make(map[string]struct{})
	s.dirtyMu.Unlock()

	out := make(map[string]*store.Session, len(senders))
	for sender := range senders {
		if sess, ok := s.cache.Get(sender); ok {
			out[sender] = sess
		}
	}
	return out
}

// save writes the changed sessions. A failed batch is marked changed again
// so the next flush retries it.
func (s *CachedSessionStore) save(ctx context.Context) error {
	batch := s.takeDirty()
	if len(batch) == 0 {
		return nil
	}
	if err := s.backend.Save(ctx, batch); err != nil {
		senders := make([]string, 0, len(batch))
		for sender := range batch {
			senders = append(senders, sender)
		}
		s.markDirty(senders...)
		return err
	}
	return nil
}

func (s *CachedSessionStore) Senders() []string {
	return s.cache.Senders()
}

// FlushAll persists every session changed since the last successful flush.
// Flushes do not overlap.
func (s *CachedSessionStore) FlushAll(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.save(ctx)
}

// Close flushes one last time and releases the backend. It is safe to call
// more than once.
func (s *CachedSessionStore) Close(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.save(ctx)
	if flushErr != nil {
		s.logger.Error(logger.ModuleStore, "Final session flush failed", map[string]interface{}{
			"error": flushErr.Error(),
		})
	}
	return errors.Join(flushErr, s.backend.Close())
}

// ErrStoreClosed is returned by FlushAll after Close
var ErrStoreClosed = errors.New("session store closed")
