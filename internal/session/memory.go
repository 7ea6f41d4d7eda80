package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultSweepInterval = 10 * time.Minute

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = *sess
	s.mu.Unlock()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Sweeper periodically removes expired sessions from a MemoryStore.
type Sweeper struct {
	store    *MemoryStore
	interval time.Duration
}

// NewSweeper returns nil when store is nil.
func NewSweeper(store *MemoryStore, interval time.Duration) *Sweeper {
	if store == nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval}
}

// Start launches the sweep loop in a background goroutine.
func (w *Sweeper) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go w.run(ctx)
	log.Infof("session sweeper started (interval=%s)", w.interval)
}

func (w *Sweeper) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if removed := w.store.sweep(); removed > 0 {
			log.Debugf("session sweeper: removed %d expired sessions", removed)
		}
		timer := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
	}
}

var _ Store = (*MemoryStore)(nil)
