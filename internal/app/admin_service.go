package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// AdminService hosts the administrator use cases: results, analytics and
// question catalog management.
type AdminService struct {
	submissions SubmissionRepository
	analytics   AnalyticsRepository
	catalog     CatalogAdminRepository
	invalidate  func(context.Context)
	log         *zap.Logger
	newID       func() string
}

func NewAdminService(submissions SubmissionRepository, analytics AnalyticsRepository, catalog CatalogAdminRepository, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{
		submissions: submissions,
		analytics:   analytics,
		catalog:     catalog,
		log:         log,
		newID:       uuid.NewString,
	}
}

// SetCatalogInvalidation registers a hook invoked after every catalog edit so
// a cached catalog view never serves stale questions past its TTL window.
func (s *AdminService) SetCatalogInvalidation(fn func(context.Context)) {
	s.invalidate = fn
}

func (s *AdminService) invalidateCatalog(ctx context.Context) {
	if s.invalidate != nil {
		s.invalidate(ctx)
	}
}

// SubmissionDetail pairs a submission with its per-question rows.
type SubmissionDetail struct {
	Submission domain.SurveySubmission   `json:"submission"`
	Responses  []domain.QuestionResponse `json:"responses"`
}

func (s *AdminService) ListSubmissions(ctx context.Context) ([]domain.SurveySubmission, error) {
	return s.submissions.ListSubmissions(ctx)
}

func (s *AdminService) GetSubmission(ctx context.Context, id string) (SubmissionDetail, error) {
	sub, err := s.submissions.GetSubmission(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	responses, err := s.submissions.ListQuestionResponses(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	return SubmissionDetail{Submission: sub, Responses: responses}, nil
}

// DeleteSubmission removes the submission and cascades to its detail and
// analytics rows.
func (s *AdminService) DeleteSubmission(ctx context.Context, id string) error {
	return s.submissions.DeleteSubmission(ctx, id)
}

func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.catalog.ListQuestions(ctx)
}

// CreateQuestion assigns a stable opaque id and appends the question to the
// catalog. Question text stays a display label; renames do not orphan future
// responses keyed by id, though historical detail rows keep the old text.
func (s *AdminService) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	if q.Text == "" {
		return domain.Question{}, domain.NewValidationError("text", "required")
	}
	if !q.Axis.Valid() {
		return domain.Question{}, domain.NewValidationError("axis", "must be X or Y")
	}
	q.ID = s.newID()
	if err := s.catalog.CreateQuestion(ctx, q); err != nil {
		return domain.Question{}, err
	}
	s.invalidateCatalog(ctx)
	return q, nil
}

func (s *AdminService) UpdateQuestion(ctx context.Context, q domain.Question) error {
	if q.ID == "" {
		return domain.NewValidationError("id", "required")
	}
	if !q.Axis.Valid() {
		return domain.NewValidationError("axis", "must be X or Y")
	}
	if err := s.catalog.UpdateQuestion(ctx, q); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *AdminService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.catalog.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// AnalyticsSummary aggregates results and session telemetry for the admin
// dashboard.
type AnalyticsSummary struct {
	TotalSubmissions  int                     `json:"total_submissions"`
	StrategyCounts    map[domain.Strategy]int `json:"strategy_counts"`
	AvgMilitaryScore  float64                 `json:"avg_military_score"`
	AvgCivilianScore  float64                 `json:"avg_civilian_score"`
	SessionCount      int                     `json:"session_count"`
	AvgCompletionRate float64                 `json:"avg_completion_rate"`
	DropOffByQuestion map[int]int             `json:"drop_off_by_question"`
	FirstSubmission   *time.Time              `json:"first_submission,omitempty"`
	LastSubmission    *time.Time              `json:"last_submission,omitempty"`
}

// Summary builds the aggregate view. Session telemetry is enhancement data:
// if the analytics store fails the submission aggregates are still returned.
func (s *AdminService) Summary(ctx context.Context) (AnalyticsSummary, error) {
	subs, err := s.submissions.ListSubmissions(ctx)
	if err != nil {
		return AnalyticsSummary{}, err
	}
	summary := AnalyticsSummary{
		TotalSubmissions:  len(subs),
		StrategyCounts:    make(map[domain.Strategy]int),
		DropOffByQuestion: make(map[int]int),
	}
	var militarySum, civilianSum int
	for i, sub := range subs {
		summary.StrategyCounts[sub.Strategy]++
		militarySum += sub.MilitaryScore
		civilianSum += sub.CivilianScore
		created := sub.CreatedAt
		if i == 0 || created.Before(*summary.FirstSubmission) {
			summary.FirstSubmission = &created
		}
		if i == 0 || created.After(*summary.LastSubmission) {
			summary.LastSubmission = &created
		}
	}
	if len(subs) > 0 {
		summary.AvgMilitaryScore = float64(militarySum) / float64(len(subs))
		summary.AvgCivilianScore = float64(civilianSum) / float64(len(subs))
	}

	sessions, err := s.analytics.ListSessions(ctx)
	if err != nil {
		s.log.Warn("session telemetry unavailable for summary", zap.Error(err))
		return summary, nil
	}
	summary.SessionCount = len(sessions)
	var rateSum float64
	for _, session := range sessions {
		rateSum += session.CompletionRate
		if session.CompletedAt == nil && session.DroppedAtQuestion != nil {
			summary.DropOffByQuestion[*session.DroppedAtQuestion]++
		}
	}
	if len(sessions) > 0 {
		summary.AvgCompletionRate = rateSum / float64(len(sessions))
	}
	return summary, nil
}
