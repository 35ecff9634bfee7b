package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// AccessRepository is an in-memory implementation of app.AccessRepository.
type AccessRepository struct {
	mu       sync.RWMutex
	admins   map[string]domain.AdminAccount // keyed by email
	requests map[string]domain.AccessRequest
}

func NewAccessRepository() *AccessRepository {
	return &AccessRepository{
		admins:   make(map[string]domain.AdminAccount),
		requests: make(map[string]domain.AccessRequest),
	}
}

func (r *AccessRepository) AdminByEmail(_ context.Context, email string) (*domain.AdminAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.admins[email]
	if !ok {
		return nil, nil
	}
	return &admin, nil
}

func (r *AccessRepository) CreateAdmin(_ context.Context, admin domain.AdminAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[admin.Email] = admin
	return nil
}

func (r *AccessRepository) CreateAccessRequest(_ context.Context, req domain.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = req
	return nil
}

func (r *AccessRepository) GetAccessRequest(_ context.Context, id string) (*domain.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *AccessRepository) UpdateAccessRequest(_ context.Context, req domain.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return domain.ErrRequestNotFound
	}
	r.requests[req.ID] = req
	return nil
}

func (r *AccessRepository) ListAccessRequests(_ context.Context) ([]domain.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AccessRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
