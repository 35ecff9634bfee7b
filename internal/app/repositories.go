package app

import (
	"context"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// DraftRepository abstracts how in-flight wizard drafts are stored (in-memory,
// Redis, etc). Get returns an empty draft for unknown or corrupt ids; Set is a
// full replace persisted immediately; Reset deletes the key.
type DraftRepository interface {
	Get(ctx context.Context, draftID string) (domain.DraftState, error)
	Set(ctx context.Context, draftID string, state domain.DraftState) error
	Reset(ctx context.Context, draftID string) error
}

// CatalogRepository serves the read path of the question catalog
// (from cache/backing store).
type CatalogRepository interface {
	ActiveQuestions(ctx context.Context) ([]domain.Question, error)
}

// CatalogAdminRepository is the mutable side of the catalog.
type CatalogAdminRepository interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) error
	UpdateQuestion(ctx context.Context, q domain.Question) error
	DeleteQuestion(ctx context.Context, id string) error
}

// SubmissionRepository persists canonical submissions and their per-question
// detail rows. DeleteSubmission cascades to detail and analytics rows.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub domain.SurveySubmission) error
	AddQuestionResponse(ctx context.Context, row domain.QuestionResponse) error
	GetSubmission(ctx context.Context, id string) (domain.SurveySubmission, error)
	ListSubmissions(ctx context.Context) ([]domain.SurveySubmission, error)
	ListQuestionResponses(ctx context.Context, submissionID string) ([]domain.QuestionResponse, error)
	DeleteSubmission(ctx context.Context, id string) error
}

// AnalyticsRepository stores response analytics sessions. GetSession returns
// domain.ErrSessionNotFound for unknown ids; SaveSession upserts.
// RelinkSession rewrites a session's key from the client-generated id to the
// final submission id in one step.
type AnalyticsRepository interface {
	GetSession(ctx context.Context, id string) (domain.AnalyticsSession, error)
	SaveSession(ctx context.Context, session domain.AnalyticsSession) error
	RelinkSession(ctx context.Context, oldID string, session domain.AnalyticsSession) error
	ListSessions(ctx context.Context) ([]domain.AnalyticsSession, error)
}

// AccessRepository stores admin accounts and beta access requests.
// AdminByEmail and GetAccessRequest return nil without error on a miss.
type AccessRepository interface {
	AdminByEmail(ctx context.Context, email string) (*domain.AdminAccount, error)
	CreateAdmin(ctx context.Context, admin domain.AdminAccount) error
	CreateAccessRequest(ctx context.Context, req domain.AccessRequest) error
	GetAccessRequest(ctx context.Context, id string) (*domain.AccessRequest, error)
	UpdateAccessRequest(ctx context.Context, req domain.AccessRequest) error
	ListAccessRequests(ctx context.Context) ([]domain.AccessRequest, error)
}

// CodeSender delivers the shared beta code over an out-of-band channel.
type CodeSender interface {
	SendAccessCode(ctx context.Context, to, code string) error
}
