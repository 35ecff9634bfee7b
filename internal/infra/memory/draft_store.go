package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// DraftStore is an in-memory implementation of app.DraftRepository. Each
// draft is held as its serialized form, mirroring the durable-store contract:
// Set replaces the whole value, Get deserializes it back, and a corrupt
// payload reads as an empty draft rather than an error.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string][]byte)}
}

func (s *DraftStore) Get(_ context.Context, draftID string) (domain.DraftState, error) {
	s.mu.RLock()
	raw, ok := s.drafts[draftID]
	s.mu.RUnlock()
	if !ok {
		return domain.NewDraftState(), nil
	}
	var state domain.DraftState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.NewDraftState(), nil
	}
	if state.Answers == nil {
		state.Answers = make(map[string]domain.AnswerRecord)
	}
	return state, nil
}

func (s *DraftStore) Set(_ context.Context, draftID string, state domain.DraftState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.drafts[draftID] = raw
	s.mu.Unlock()
	return nil
}

func (s *DraftStore) Reset(_ context.Context, draftID string) error {
	s.mu.Lock()
	delete(s.drafts, draftID)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a draft's stored payload with a non-JSON value. Test
// hook for the corrupt-payload contract.
func (s *DraftStore) Corrupt(draftID string) {
	s.mu.Lock()
	s.drafts[draftID] = []byte("{not json")
	s.mu.Unlock()
}
