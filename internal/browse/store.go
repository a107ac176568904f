package browse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/hearth/api/internal/logger"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("browse session not found")

// Store keeps live sessions in memory and expires idle ones.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     Deps
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewStore creates a Store whose sessions expire after ttl without activity.
func NewStore(deps Deps, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		deps:     deps,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Create registers a new session with a random id.
func (st *Store) Create() *Session {
	id := uuid.New().String()
	sess := NewSession(id, st.deps, st.now())

	st.mu.Lock()
	st.sessions[id] = sess
	count := len(st.sessions)
	st.mu.Unlock()

	st.log.Info("Browse session created", map[string]interface{}{
		"session_id": id,
		"sessions":   count,
	})
	return sess
}

// Get returns the session and marks it active. The touch happens under the
// store lock so a concurrent Sweep cannot expire a session being handed out.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Touch(st.now())
	return sess, nil
}

// Delete closes and removes a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.Close()
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many were removed.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.ttl)

	var expired []*Session
	st.mu.Lock()
	for id, sess := range st.sessions {
		if sess.LastSeen().Before(cutoff) {
			expired = append(expired, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}
	if len(expired) > 0 {
		st.log.Info("Expired idle browse sessions", map[string]interface{}{
			"expired": len(expired),
		})
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes all sessions.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.closeAll()
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

func (st *Store) closeAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
