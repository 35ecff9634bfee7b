package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// SubmissionRepository is an in-memory implementation of
// app.SubmissionRepository, used in dev mode and tests.
type SubmissionRepository struct {
	mu          sync.RWMutex
	submissions map[string]domain.SurveySubmission
	responses   map[string][]domain.QuestionResponse
	analytics   *AnalyticsRepository // cascade target, optional
}

// NewSubmissionRepository builds the store. A non-nil analytics repository
// receives cascade deletes alongside detail rows.
func NewSubmissionRepository(analytics *AnalyticsRepository) *SubmissionRepository {
	return &SubmissionRepository{
		submissions: make(map[string]domain.SurveySubmission),
		responses:   make(map[string][]domain.QuestionResponse),
		analytics:   analytics,
	}
}

func (r *SubmissionRepository) CreateSubmission(_ context.Context, sub domain.SurveySubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[sub.ID] = sub
	return nil
}

func (r *SubmissionRepository) AddQuestionResponse(_ context.Context, row domain.QuestionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.submissions[row.SubmissionID]; !ok {
		return domain.ErrSubmissionNotFound
	}
	r.responses[row.SubmissionID] = append(r.responses[row.SubmissionID], row)
	return nil
}

func (r *SubmissionRepository) GetSubmission(_ context.Context, id string) (domain.SurveySubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.submissions[id]
	if !ok {
		return domain.SurveySubmission{}, domain.ErrSubmissionNotFound
	}
	return sub, nil
}

func (r *SubmissionRepository) ListSubmissions(_ context.Context) ([]domain.SurveySubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SurveySubmission, 0, len(r.submissions))
	for _, sub := range r.submissions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SubmissionRepository) ListQuestionResponses(_ context.Context, submissionID string) ([]domain.QuestionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.responses[submissionID]
	out := make([]domain.QuestionResponse, len(rows))
	copy(out, rows)
	return out, nil
}

// DeleteSubmission removes the submission and cascades to its detail rows
// and analytics session.
func (r *SubmissionRepository) DeleteSubmission(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.submissions[id]; !ok {
		r.mu.Unlock()
		return domain.ErrSubmissionNotFound
	}
	delete(r.submissions, id)
	delete(r.responses, id)
	r.mu.Unlock()

	if r.analytics != nil {
		_ = r.analytics.DeleteSession(ctx, id)
	}
	return nil
}
