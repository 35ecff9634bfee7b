package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/scoring"
)

// Wizard layout: three Likert pages followed by demographics, benefits and
// contact.
const (
	LikertPages = 3
	WizardSteps = 6
)

// Multi-select sentinels that exclude every other choice in their list.
const (
	NoneBenefitsSentinel  = "None"
	NoneFirstYearSentinel = "None of the above"
)

// SurveyService hosts the respondent-facing use cases: draft mutations, step
// gates and the submission reconciler.
type SurveyService struct {
	drafts      DraftRepository
	catalog     CatalogRepository
	submissions SubmissionRepository
	tracker     *TrackerService
	feed        *Feed
	log         *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewSurveyService(drafts DraftRepository, catalog CatalogRepository, submissions SubmissionRepository, tracker *TrackerService, feed *Feed, log *zap.Logger) *SurveyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SurveyService{
		drafts:      drafts,
		catalog:     catalog,
		submissions: submissions,
		tracker:     tracker,
		feed:        feed,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Draft returns the current full state for a draft id; unknown ids yield an
// empty draft.
func (s *SurveyService) Draft(ctx context.Context, draftID string) (domain.DraftState, error) {
	return s.drafts.Get(ctx, draftID)
}

// SaveAnswer records one question's answer, overwriting any prior selection
// for the same question. The update is a read-modify-write over the full
// draft: last writer wins, there is no locking across concurrent mutations.
func (s *SurveyService) SaveAnswer(ctx context.Context, draftID string, answer domain.AnswerRecord) error {
	if err := domain.ValidateAnswer(answer); err != nil {
		return err
	}
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Answers == nil {
		draft.Answers = make(map[string]domain.AnswerRecord)
	}
	draft.Answers[answer.Question] = answer
	return s.drafts.Set(ctx, draftID, draft)
}

// SaveDemographics replaces the demographics sub-object of the draft.
func (s *SurveyService) SaveDemographics(ctx context.Context, draftID string, d domain.DemographicsAnswers) error {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	draft.Demographics = d
	return s.drafts.Set(ctx, draftID, draft)
}

// SaveBenefits replaces the benefits sub-object, normalizing the exclusive
// "None" sentinels: picking a sentinel clears the rest of its list.
func (s *SurveyService) SaveBenefits(ctx context.Context, draftID string, b domain.BenefitsAnswers) error {
	b.BenefitsUsed = normalizeExclusive(b.BenefitsUsed, NoneBenefitsSentinel)
	b.FirstYearHelp = normalizeExclusive(b.FirstYearHelp, NoneFirstYearSentinel)
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	draft.Benefits = b
	return s.drafts.Set(ctx, draftID, draft)
}

// SaveContact replaces the contact sub-object. Field validation happens at
// the step gate and again at submission, not here, so partial entry survives
// page reloads.
func (s *SurveyService) SaveContact(ctx context.Context, draftID string, c domain.ContactAnswers) error {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	draft.Contact = c
	return s.drafts.Set(ctx, draftID, draft)
}

// AttachTracking stores the analytics session id in the draft so a page
// reload resumes the same tracking session.
func (s *SurveyService) AttachTracking(ctx context.Context, draftID, sessionID string) error {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	draft.TrackingSessionID = sessionID
	return s.drafts.Set(ctx, draftID, draft)
}

// ResetDraft clears both the in-memory and durable copy of the draft.
func (s *SurveyService) ResetDraft(ctx context.Context, draftID string) error {
	return s.drafts.Reset(ctx, draftID)
}

// QuestionsForStep returns the active catalog questions shown on one of the
// Likert pages (steps 1..3), in catalog order.
func (s *SurveyService) QuestionsForStep(ctx context.Context, step int) ([]domain.Question, error) {
	if step < 1 || step > LikertPages {
		return nil, domain.NewValidationError("step", "no questions on this step")
	}
	questions, err := s.catalog.ActiveQuestions(ctx)
	if err != nil {
		return nil, err
	}
	start, end := pageBounds(len(questions), step)
	return questions[start:end], nil
}

// CanAdvance reports whether the draft satisfies the gate for the given step:
// every question answered on a Likert page, a valid contact block on the
// final step, always true for the optional demographic and benefits steps.
func (s *SurveyService) CanAdvance(ctx context.Context, draftID string, step int) (bool, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return false, err
	}
	switch {
	case step >= 1 && step <= LikertPages:
		questions, err := s.QuestionsForStep(ctx, step)
		if err != nil {
			return false, err
		}
		for _, q := range questions {
			if _, ok := draft.Answers[q.Text]; !ok {
				return false, nil
			}
		}
		return true, nil
	case step == WizardSteps:
		return draft.Contact.Validate() == nil, nil
	case step > LikertPages && step < WizardSteps:
		return true, nil
	default:
		return false, domain.NewValidationError("step", "unknown step")
	}
}

// SubmitRequest is the sanitized submission payload handed to the reconciler.
// Subscribe and StoryOptIn arrive as whatever representation the transport
// produced; the reconciler coerces them. Client-computed scores are advisory
// only and never trusted.
type SubmitRequest struct {
	Contact           *domain.ContactAnswers
	Subscribe         any
	StoryOptIn        any
	ResponseSessionID string
	Timings           map[string]int
	ClientMilitary    int
	ClientCivilian    int
}

// SubmitResult reports the persisted submission id and the recomputed scores.
type SubmitResult struct {
	SubmissionID string         `json:"submission_id"`
	Scores       scoring.Result `json:"scores"`
}

// Submit validates the completed draft, recomputes scores server-side and
// persists the canonical submission exactly once. Validation failures return
// before any write. Per-question detail rows and analytics reconciliation are
// best-effort: their failures are logged and swallowed, never surfaced. The
// draft is cleared by the caller only after Submit reports success.
func (s *SurveyService) Submit(ctx context.Context, draftID string, req SubmitRequest) (SubmitResult, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return SubmitResult{}, err
	}

	contact := draft.Contact
	if req.Contact != nil {
		contact = *req.Contact
	}
	if err := contact.Validate(); err != nil {
		return SubmitResult{}, err
	}

	result, err := scoring.DetermineStrategy(draft)
	if err != nil {
		return SubmitResult{}, err
	}
	if req.ClientMilitary != result.MilitaryScore || req.ClientCivilian != result.CivilianScore {
		s.log.Debug("client scores differ from recomputed scores",
			zap.Int("client_military", req.ClientMilitary),
			zap.Int("client_civilian", req.ClientCivilian),
			zap.Int("military", result.MilitaryScore),
			zap.Int("civilian", result.CivilianScore))
	}

	now := s.now()
	sub := domain.SurveySubmission{
		ID:            s.newID(),
		CreatedAt:     now,
		FirstName:     contact.FirstName,
		LastName:      contact.LastName,
		Email:         contact.Email,
		Subscribe:     CoerceBool(req.Subscribe),
		StoryOptIn:    CoerceBool(req.StoryOptIn),
		MilitaryScore: result.MilitaryScore,
		CivilianScore: result.CivilianScore,
		Strategy:      result.Strategy,
		Demographics:  draft.Demographics,
		Benefits:      draft.Benefits,
	}
	if err := s.submissions.CreateSubmission(ctx, sub); err != nil {
		return SubmitResult{}, fmt.Errorf("persist submission: %w", err)
	}

	s.insertQuestionDetail(ctx, sub.ID, draft, req.Timings)

	sessionID := req.ResponseSessionID
	if sessionID == "" {
		sessionID = draft.TrackingSessionID
	}
	if sessionID != "" && s.tracker != nil {
		if err := s.tracker.Reconcile(ctx, sessionID, sub.ID, len(draft.Answers), now); err != nil {
			s.log.Warn("analytics reconciliation failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	if s.feed != nil {
		s.feed.Publish(SubmissionEvent{
			ID:            sub.ID,
			Strategy:      sub.Strategy,
			MilitaryScore: sub.MilitaryScore,
			CivilianScore: sub.CivilianScore,
			CreatedAt:     sub.CreatedAt,
		})
	}

	return SubmitResult{SubmissionID: sub.ID, Scores: result}, nil
}

// insertQuestionDetail writes one detail row per answer. Each row is its own
// statement so one bad row cannot sink the submission; failures are logged
// and swallowed.
func (s *SurveyService) insertQuestionDetail(ctx context.Context, submissionID string, draft domain.DraftState, timings map[string]int) {
	categories := map[string]domain.Question{}
	if questions, err := s.catalog.ActiveQuestions(ctx); err != nil {
		s.log.Warn("catalog lookup failed, detail rows fall back to Unknown", zap.Error(err))
	} else {
		for _, q := range questions {
			categories[q.Text] = q
		}
	}

	for text, answer := range draft.Answers {
		row := domain.QuestionResponse{
			SubmissionID: submissionID,
			Question:     text,
			Category:     "Unknown",
			Axis:         answer.Axis,
			Value:        answer.Offset,
		}
		if q, ok := categories[text]; ok {
			row.Category = q.Category
		}
		if ms, ok := timings[text]; ok {
			v := ms
			row.ResponseTimeMS = &v
		}
		if err := s.submissions.AddQuestionResponse(ctx, row); err != nil {
			s.log.Warn("question detail insert failed", zap.String("question", text), zap.Error(err))
		}
	}
}

// CoerceBool converts the loose boolean representations the transport layer
// may deliver (bool, "true"/"1", numeric 1) into a strict bool. Anything
// else, including nil, is false.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1"
	case float64:
		return t == 1
	case int:
		return t == 1
	case json.Number:
		return t.String() == "1"
	default:
		return false
	}
}

func normalizeExclusive(values []string, sentinel string) []string {
	for _, v := range values {
		if v == sentinel {
			return []string{sentinel}
		}
	}
	return values
}

// pageBounds chunks n catalog questions into LikertPages near-equal pages and
// returns the [start, end) slice bounds for the requested page.
func pageBounds(n, step int) (int, int) {
	per := n / LikertPages
	extra := n % LikertPages
	start := 0
	for page := 1; page < step; page++ {
		size := per
		if page <= extra {
			size++
		}
		start += size
	}
	size := per
	if step <= extra {
		size++
	}
	return start, start + size
}
