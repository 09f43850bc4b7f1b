package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type memorySession struct {
	session   entity.Session
	expiresAt time.Time
}

type memSession struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
	sessions  map[string]memorySession
}

// NewMemorySessionRepository - keeps sessions in process memory with the same sliding ttl as the Redis store.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memSession{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memorySession),
	}
}

func (that *memSession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sweep()

	that.sessions[session.ID] = memorySession{
		session:   cloneSession(session),
		expiresAt: that.expiry(),
	}

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	if that.expired(stored) {
		delete(that.sessions, id)
		return nil, apperror.ErrSessionNotFound
	}

	stored.expiresAt = that.expiry()
	that.sessions[id] = stored

	session := cloneSession(&stored.session)
	return &session, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.sessions[id]
	if !ok || that.expired(stored) {
		delete(that.sessions, id)
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

// sweep - drops every expired session, at most once per ttl. Callers hold mu.
func (that *memSession) sweep() {
	if that.ttl <= 0 {
		return
	}

	now := that.now()
	if now.Before(that.nextSweep) {
		return
	}

	for id, stored := range that.sessions {
		if that.expired(stored) {
			delete(that.sessions, id)
		}
	}

	that.nextSweep = now.Add(that.ttl)
}

func (that *memSession) expiry() time.Time {
	if that.ttl <= 0 {
		return time.Time{}
	}
	return that.now().Add(that.ttl)
}

func (that *memSession) expired(stored memorySession) bool {
	return !stored.expiresAt.IsZero() && !that.now().Before(stored.expiresAt)
}

func cloneSession(session *entity.Session) entity.Session {
	out := *session
	out.History = make([]entity.MoveRecord, len(session.History))
	for i, record := range session.History {
		out.History[i] = record.Clone()
	}

	return out
}
