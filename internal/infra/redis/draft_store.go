package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// DraftStore keeps each in-flight draft as one JSON value under one key, the
// durable-store contract: read at wizard entry, fully rewritten on every
// mutation, deleted on submit success or reset. The TTL only bounds abandoned
// keys; every Set refreshes it.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) Get(ctx context.Context, draftID string) (domain.DraftState, error) {
	raw, err := s.client.Get(ctx, s.key(draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewDraftState(), nil
	}
	if err != nil {
		return domain.DraftState{}, err
	}
	var state domain.DraftState
	if err := json.Unmarshal(raw, &state); err != nil {
		// Corrupt payloads are treated as empty, never surfaced.
		return domain.NewDraftState(), nil
	}
	if state.Answers == nil {
		state.Answers = make(map[string]domain.AnswerRecord)
	}
	return state, nil
}

func (s *DraftStore) Set(ctx context.Context, draftID string, state domain.DraftState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(draftID), raw, s.ttl).Err()
}

func (s *DraftStore) Reset(ctx context.Context, draftID string) error {
	return s.client.Del(ctx, s.key(draftID)).Err()
}

func (s *DraftStore) key(draftID string) string {
	return "survey:draft:" + draftID
}
