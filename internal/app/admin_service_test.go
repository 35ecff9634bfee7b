package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/memory"
)

func seedSubmission(t *testing.T, repo SubmissionRepository, id string, strategy domain.Strategy, military, civilian int, at time.Time) {
	t.Helper()
	err := repo.CreateSubmission(context.Background(), domain.SurveySubmission{
		ID:            id,
		CreatedAt:     at,
		FirstName:     "Sam",
		LastName:      "Park",
		Email:         "sam@example.com",
		MilitaryScore: military,
		CivilianScore: civilian,
		Strategy:      strategy,
	})
	if err != nil {
		t.Fatalf("CreateSubmission(%s): %v", id, err)
	}
}

func TestSummaryAggregates(t *testing.T) {
	analytics := memory.NewAnalyticsRepository()
	submissions := memory.NewSubmissionRepository(analytics)
	admin := NewAdminService(submissions, analytics, memory.NewCatalogStore(nil), nil)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedSubmission(t, submissions, "s1", domain.StrategySeparation, 6, -2, base)
	seedSubmission(t, submissions, "s2", domain.StrategyIntegration, 4, 4, base.Add(time.Hour))
	seedSubmission(t, submissions, "s3", domain.StrategySeparation, 2, -4, base.Add(2*time.Hour))

	dropped := 5
	if err := analytics.SaveSession(ctx, domain.AnalyticsSession{ID: "a1", TotalQuestions: 10, QuestionsAnswered: 6, CompletionRate: 60, StartedAt: base, DroppedAtQuestion: &dropped}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	done := base.Add(time.Hour)
	if err := analytics.SaveSession(ctx, domain.AnalyticsSession{ID: "s2", TotalQuestions: 10, QuestionsAnswered: 10, CompletionRate: 100, StartedAt: base, CompletedAt: &done}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	summary, err := admin.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalSubmissions != 3 {
		t.Fatalf("expected 3 submissions, got %d", summary.TotalSubmissions)
	}
	if summary.StrategyCounts[domain.StrategySeparation] != 2 || summary.StrategyCounts[domain.StrategyIntegration] != 1 {
		t.Fatalf("unexpected strategy counts %v", summary.StrategyCounts)
	}
	if summary.AvgMilitaryScore != 4 {
		t.Fatalf("expected avg military 4, got %v", summary.AvgMilitaryScore)
	}
	if summary.AvgCompletionRate != 80 {
		t.Fatalf("expected avg completion 80, got %v", summary.AvgCompletionRate)
	}
	if summary.DropOffByQuestion[5] != 1 {
		t.Fatalf("expected one drop at question 5, got %v", summary.DropOffByQuestion)
	}
	if summary.FirstSubmission == nil || !summary.FirstSubmission.Equal(base) {
		t.Fatalf("unexpected first submission %v", summary.FirstSubmission)
	}
	if summary.LastSubmission == nil || !summary.LastSubmission.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("unexpected last submission %v", summary.LastSubmission)
	}
}

type brokenAnalytics struct {
	AnalyticsRepository
}

func (brokenAnalytics) ListSessions(context.Context) ([]domain.AnalyticsSession, error) {
	return nil, errors.New("analytics store down")
}

func TestSummarySurvivesAnalyticsOutage(t *testing.T) {
	analytics := memory.NewAnalyticsRepository()
	submissions := memory.NewSubmissionRepository(analytics)
	admin := NewAdminService(submissions, brokenAnalytics{analytics}, memory.NewCatalogStore(nil), nil)

	seedSubmission(t, submissions, "s1", domain.StrategyMarginalization, 0, 0, time.Now().UTC())

	summary, err := admin.Summary(context.Background())
	if err != nil {
		t.Fatalf("submission aggregates must survive a telemetry outage: %v", err)
	}
	if summary.TotalSubmissions != 1 {
		t.Fatalf("expected 1 submission, got %d", summary.TotalSubmissions)
	}
	if summary.SessionCount != 0 {
		t.Fatalf("expected no session telemetry, got %d", summary.SessionCount)
	}
}

func TestQuestionEditsInvalidateCatalogCache(t *testing.T) {
	analytics := memory.NewAnalyticsRepository()
	store := memory.NewCatalogStore(nil)
	admin := NewAdminService(memory.NewSubmissionRepository(analytics), analytics, store, nil)

	var invalidations int
	admin.SetCatalogInvalidation(func(context.Context) { invalidations++ })
	ctx := context.Background()

	q, err := admin.CreateQuestion(ctx, domain.Question{Text: "I attend veteran meetups.", Axis: domain.AxisMilitary, Category: "Community", Active: true})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	q.Active = false
	if err := admin.UpdateQuestion(ctx, q); err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if err := admin.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if invalidations != 3 {
		t.Fatalf("expected 3 invalidations, got %d", invalidations)
	}

	if err := admin.DeleteQuestion(ctx, q.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if invalidations != 3 {
		t.Fatal("failed edits must not invalidate the cache")
	}
}

func TestDeleteSubmissionCascades(t *testing.T) {
	analytics := memory.NewAnalyticsRepository()
	submissions := memory.NewSubmissionRepository(analytics)
	admin := NewAdminService(submissions, analytics, memory.NewCatalogStore(nil), nil)
	ctx := context.Background()

	seedSubmission(t, submissions, "s1", domain.StrategyIntegration, 3, 3, time.Now().UTC())
	if err := submissions.AddQuestionResponse(ctx, domain.QuestionResponse{SubmissionID: "s1", Question: "q", Category: "c", Axis: domain.AxisMilitary, Value: 1}); err != nil {
		t.Fatalf("AddQuestionResponse: %v", err)
	}
	if err := analytics.SaveSession(ctx, domain.AnalyticsSession{ID: "s1", TotalQuestions: 1, StartedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	if err := admin.DeleteSubmission(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSubmission: %v", err)
	}
	if _, err := submissions.GetSubmission(ctx, "s1"); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected submission gone, got %v", err)
	}
	rows, err := submissions.ListQuestionResponses(ctx, "s1")
	if err != nil {
		t.Fatalf("ListQuestionResponses: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected detail rows cascaded, got %d", len(rows))
	}
	if _, err := analytics.GetSession(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected analytics row cascaded, got %v", err)
	}
}
