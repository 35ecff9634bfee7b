package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// CatalogLoader fetches the question catalog from a backing store.
type CatalogLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// CatalogRepository caches the active question catalog in Redis as one JSON
// value and falls back to a loader on cache miss.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	if cached, ok := r.fromCache(ctx); ok {
		return cached, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := r.fromCache(ctx); ok {
			return cached, nil
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		active := make([]domain.Question, 0, len(questions))
		for _, q := range questions {
			if q.Active {
				active = append(active, q)
			}
		}

		if raw, err := json.Marshal(active); err == nil {
			// Cache fill is best-effort.
			_ = r.client.Set(ctx, r.key(), raw, r.ttlWithJitter()).Err()
		}
		return active, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached catalog after admin edits.
func (r *CatalogRepository) Invalidate(ctx context.Context) {
	_ = r.client.Del(ctx, r.key()).Err()
}

func (r *CatalogRepository) fromCache(ctx context.Context) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (r *CatalogRepository) key() string {
	return "survey:catalog:active"
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
