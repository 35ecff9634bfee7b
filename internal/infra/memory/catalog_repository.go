package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// CatalogLoader fetches the question catalog from a backing store.
type CatalogLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// CatalogRepository caches the catalog with TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Question
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ActiveQuestions returns the active questions in catalog order, from cache
// when fresh. Concurrent cache misses collapse into one loader call.
func (r *CatalogRepository) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if r.cached != nil && r.expiresAt.After(now) {
		defer r.mu.RUnlock()
		return r.cached, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.cached != nil && r.expiresAt.After(now) {
			defer r.mu.RUnlock()
			return r.cached, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		active := filterActive(questions)

		r.mu.Lock()
		r.cached = active
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return active, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached catalog so the next read reloads it. Called
// after admin catalog edits.
func (r *CatalogRepository) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func filterActive(questions []domain.Question) []domain.Question {
	active := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.Active {
			active = append(active, q)
		}
	}
	return active
}

// StaticCatalogLoader is a simple loader backed by an in-memory slice
// (useful for tests/demos).
type StaticCatalogLoader struct {
	questions []domain.Question
}

func NewStaticCatalogLoader(questions []domain.Question) *StaticCatalogLoader {
	return &StaticCatalogLoader{questions: questions}
}

func (l *StaticCatalogLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
