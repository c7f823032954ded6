package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/freekieb7/rawhttp/schedule"
	"github.com/freekieb7/rawhttp/session"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session store: session not found")

const MemorySessionStoreName = "memory"

// MemorySessionStore is the process-wide session table. Writers take the
// lock exclusively; lookups share it.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]session.Session),
	}
}

func (m *MemorySessionStore) Name() string {
	return MemorySessionStoreName
}

func (m *MemorySessionStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.sessions)
	return nil
}

// Create registers a session under a fresh random id.
func (m *MemorySessionStore) Create(attributes map[string]any, now time.Time) session.Session {
	sess := session.NewDefaultSession(uuid.NewString(), attributes, now)

	m.mu.Lock()
	m.sessions[sess.GetId()] = sess
	m.mu.Unlock()

	return sess
}

func (m *MemorySessionStore) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, found := m.sessions[id]
	return found
}

func (m *MemorySessionStore) Get(id string) (session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, found := m.sessions[id]
	if !found {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Touch refreshes the last access time of a known session and reports
// whether the id was known.
func (m *MemorySessionStore) Touch(id string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, found := m.sessions[id]
	if !found {
		return false
	}

	sess.Touch(now)
	return true
}

func (m *MemorySessionStore) Save(sess session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.GetId()] = sess
	return nil
}

func (m *MemorySessionStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.sessions[id]; !found {
		return ErrSessionNotFound
	}

	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops every session idle for longer than idle and returns how many
// were removed.
func (m *MemorySessionStore) Sweep(now time.Time, idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if now.Sub(sess.LastAccessed()) > idle {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// SweepJob wraps Sweep in a job that runs every interval.
func SweepJob(store SessionStore, idle, interval time.Duration, logger *slog.Logger) *schedule.Job {
	return schedule.NewJob().
		WithName("session-sweep").
		WithInterval(interval).
		WithTasks(func(ctx context.Context) error {
			removed := store.Sweep(time.Now(), idle)
			logger.InfoContext(ctx, "expired sessions swept", "store", store.Name(), "removed", removed, "remaining", store.Len())
			return nil
		})
}
