package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/useragent"
)

// TrackerService records per-question progress telemetry, decoupled from the
// main submission path. Every operation is best-effort: storage failures are
// logged and swallowed so telemetry can never block wizard progression.
type TrackerService struct {
	sessions AnalyticsRepository
	log      *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewTrackerService(sessions AnalyticsRepository, log *zap.Logger) *TrackerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrackerService{
		sessions: sessions,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// InitSession creates or resumes a tracking session and returns its id. A
// caller-supplied id resumes the existing session when one is stored; an
// empty id gets a fresh one. The id is always returned, even when storage
// fails.
func (t *TrackerService) InitSession(ctx context.Context, id string, totalQuestions int, userAgentString string) string {
	if id == "" {
		id = t.newID()
	} else if _, err := t.sessions.GetSession(ctx, id); err == nil {
		return id
	}

	device, browser := useragent.Classify(userAgentString)
	session := domain.AnalyticsSession{
		ID:             id,
		TotalQuestions: totalQuestions,
		StartedAt:      t.now(),
		DeviceType:     device,
		Browser:        browser,
	}
	if err := t.sessions.SaveSession(ctx, session); err != nil {
		t.log.Warn("tracking session init failed", zap.String("session_id", id), zap.Error(err))
	}
	return id
}

// RecordResponse notes that the question at questionIndex was answered.
// Progress never moves backwards; dropped_at_question tracks the latest
// question touched so abandonment analysis knows where respondents stop.
func (t *TrackerService) RecordResponse(ctx context.Context, sessionID string, questionIndex int) {
	session, err := t.sessions.GetSession(ctx, sessionID)
	if err != nil {
		t.log.Warn("tracking record skipped", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if answered := questionIndex + 1; answered > session.QuestionsAnswered {
		session.QuestionsAnswered = answered
	}
	if session.TotalQuestions > 0 {
		session.CompletionRate = float64(session.QuestionsAnswered) / float64(session.TotalQuestions) * 100
	}
	dropped := questionIndex
	session.DroppedAtQuestion = &dropped
	if err := t.sessions.SaveSession(ctx, session); err != nil {
		t.log.Warn("tracking record failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Reconcile rewrites the session keyed by the client-generated id to the
// final submission id and marks it fully complete. When no session exists
// under that id a fresh completed record is created instead.
func (t *TrackerService) Reconcile(ctx context.Context, sessionID, submissionID string, totalAnswered int, completedAt time.Time) error {
	session, err := t.sessions.GetSession(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	if errors.Is(err, domain.ErrSessionNotFound) {
		session = domain.AnalyticsSession{
			ID:             submissionID,
			TotalQuestions: totalAnswered,
			StartedAt:      completedAt,
		}
	}
	session.ID = submissionID
	if session.TotalQuestions == 0 {
		session.TotalQuestions = totalAnswered
	}
	session.QuestionsAnswered = session.TotalQuestions
	session.CompletionRate = 100
	session.CompletedAt = &completedAt
	session.DroppedAtQuestion = nil

	if err == nil && sessionID != submissionID {
		return t.sessions.RelinkSession(ctx, sessionID, session)
	}
	return t.sessions.SaveSession(ctx, session)
}
