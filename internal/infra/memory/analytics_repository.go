package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// AnalyticsRepository is an in-memory implementation of
// app.AnalyticsRepository.
type AnalyticsRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.AnalyticsSession
}

func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{sessions: make(map[string]domain.AnalyticsSession)}
}

func (r *AnalyticsRepository) GetSession(_ context.Context, id string) (domain.AnalyticsSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.AnalyticsSession{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *AnalyticsRepository) SaveSession(_ context.Context, session domain.AnalyticsSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// RelinkSession atomically rewrites a session's key to the id carried by the
// replacement record.
func (r *AnalyticsRepository) RelinkSession(_ context.Context, oldID string, session domain.AnalyticsSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[oldID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, oldID)
	r.sessions[session.ID] = session
	return nil
}

func (r *AnalyticsRepository) ListSessions(_ context.Context) ([]domain.AnalyticsSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AnalyticsSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

func (r *AnalyticsRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
