package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// CatalogStore is a mutable in-memory question catalog. It backs the cache as
// a loader and serves the admin CRUD operations when no database is
// configured.
type CatalogStore struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
}

func NewCatalogStore(seed []domain.Question) *CatalogStore {
	questions := make(map[string]domain.Question, len(seed))
	for _, q := range seed {
		questions[q.ID] = q
	}
	return &CatalogStore{questions: questions}
}

// LoadQuestions returns all questions ordered by position then id.
func (s *CatalogStore) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *CatalogStore) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.LoadQuestions(ctx)
}

func (s *CatalogStore) CreateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	return nil
}

func (s *CatalogStore) UpdateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = q
	return nil
}

func (s *CatalogStore) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}
