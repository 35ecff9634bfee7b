package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/memory"
)

func TestInitSessionCreatesAndResumes(t *testing.T) {
	store := memory.NewAnalyticsRepository()
	tracker := NewTrackerService(store, nil)
	ctx := context.Background()

	id := tracker.InitSession(ctx, "", 12, "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile/15E148 Safari/604.1")
	if id == "" {
		t.Fatal("expected generated session id")
	}
	session, err := store.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.TotalQuestions != 12 {
		t.Fatalf("expected 12 total questions, got %d", session.TotalQuestions)
	}
	if session.DeviceType != "mobile" {
		t.Fatalf("expected mobile device, got %q", session.DeviceType)
	}

	tracker.RecordResponse(ctx, id, 3)
	if resumed := tracker.InitSession(ctx, id, 12, "other agent"); resumed != id {
		t.Fatalf("expected resume to keep id %s, got %s", id, resumed)
	}
	session, err = store.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession after resume: %v", err)
	}
	if session.QuestionsAnswered != 4 {
		t.Fatalf("resume must not reset progress, got %d answered", session.QuestionsAnswered)
	}
}

func TestRecordResponseNeverMovesBackwards(t *testing.T) {
	store := memory.NewAnalyticsRepository()
	tracker := NewTrackerService(store, nil)
	ctx := context.Background()

	id := tracker.InitSession(ctx, "", 10, "")
	tracker.RecordResponse(ctx, id, 7)
	tracker.RecordResponse(ctx, id, 2)

	session, err := store.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.QuestionsAnswered != 8 {
		t.Fatalf("progress moved backwards: %d", session.QuestionsAnswered)
	}
	if session.CompletionRate != 80 {
		t.Fatalf("expected 80%% completion, got %v", session.CompletionRate)
	}
	if session.DroppedAtQuestion == nil || *session.DroppedAtQuestion != 2 {
		t.Fatalf("drop marker should track the latest touch, got %+v", session.DroppedAtQuestion)
	}
}

func TestRecordResponseSwallowsUnknownSession(t *testing.T) {
	tracker := NewTrackerService(memory.NewAnalyticsRepository(), nil)
	// must not panic or error out
	tracker.RecordResponse(context.Background(), "ghost", 1)
}

func TestReconcileWithoutPriorSession(t *testing.T) {
	store := memory.NewAnalyticsRepository()
	tracker := NewTrackerService(store, nil)
	ctx := context.Background()
	done := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := tracker.Reconcile(ctx, "never-seen", "sub-1", 9, done); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	session, err := store.GetSession(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.TotalQuestions != 9 || session.QuestionsAnswered != 9 {
		t.Fatalf("expected fully answered session, got %+v", session)
	}
	if session.CompletedAt == nil || !session.CompletedAt.Equal(done) {
		t.Fatalf("expected completion timestamp %v, got %+v", done, session.CompletedAt)
	}
	if _, err := store.GetSession(ctx, "never-seen"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("no session should exist under the client id, got %v", err)
	}
}
