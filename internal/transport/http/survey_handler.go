package http

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/app"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// SurveyHandler serves the respondent-facing wizard API. Draft endpoints key
// state off the client-held X-Draft-ID header so reloads resume in place.
type SurveyHandler struct {
	survey  *app.SurveyService
	tracker *app.TrackerService
	access  *app.AccessService
	auth    *Auth
	log     *zap.Logger
}

func NewSurveyHandler(survey *app.SurveyService, tracker *app.TrackerService, access *app.AccessService, auth *Auth, log *zap.Logger) *SurveyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SurveyHandler{survey: survey, tracker: tracker, access: access, auth: auth, log: log}
}

func (h *SurveyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/gate", h.handleGate)
	mux.HandleFunc("POST /api/access-requests", h.handleRequestAccess)

	mux.HandleFunc("GET /api/questions/{step}", h.auth.RequireGate(h.handleQuestions))
	mux.HandleFunc("GET /api/draft", h.auth.RequireGate(h.handleGetDraft))
	mux.HandleFunc("DELETE /api/draft", h.auth.RequireGate(h.handleResetDraft))
	mux.HandleFunc("PUT /api/draft/answer", h.auth.RequireGate(h.handleSaveAnswer))
	mux.HandleFunc("PUT /api/draft/demographics", h.auth.RequireGate(h.handleSaveDemographics))
	mux.HandleFunc("PUT /api/draft/benefits", h.auth.RequireGate(h.handleSaveBenefits))
	mux.HandleFunc("PUT /api/draft/contact", h.auth.RequireGate(h.handleSaveContact))
	mux.HandleFunc("GET /api/draft/advance/{step}", h.auth.RequireGate(h.handleCanAdvance))
	mux.HandleFunc("POST /api/responses", h.auth.RequireGate(h.handleSubmit))
	mux.HandleFunc("POST /api/tracking/session", h.auth.RequireGate(h.handleInitSession))
	mux.HandleFunc("POST /api/tracking/response", h.auth.RequireGate(h.handleRecordResponse))
}

func draftID(r *http.Request) (string, error) {
	id := r.Header.Get("X-Draft-ID")
	if id == "" {
		return "", domain.NewValidationError("X-Draft-ID", "header required")
	}
	return id, nil
}

func stepParam(r *http.Request) (int, error) {
	step, err := strconv.Atoi(r.PathValue("step"))
	if err != nil {
		return 0, domain.NewValidationError("step", "must be a number")
	}
	return step, nil
}

// POST /api/gate
func (h *SurveyHandler) handleGate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := h.access.VerifyBetaCode(req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// POST /api/access-requests
func (h *SurveyHandler) handleRequestAccess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.access.RequestAccess(r.Context(), req.Email, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /api/questions/{step}
func (h *SurveyHandler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	step, err := stepParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	questions, err := h.survey.QuestionsForStep(r.Context(), step)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"step": step, "questions": questions})
}

// GET /api/draft
func (h *SurveyHandler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	draft, err := h.survey.Draft(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// DELETE /api/draft
func (h *SurveyHandler) handleResetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.survey.ResetDraft(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/draft/answer
func (h *SurveyHandler) handleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var answer domain.AnswerRecord
	if err := decodeJSON(r, &answer); err != nil {
		writeError(w, err)
		return
	}
	if err := h.survey.SaveAnswer(r.Context(), id, answer); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/draft/demographics
func (h *SurveyHandler) handleSaveDemographics(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var d domain.DemographicsAnswers
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, err)
		return
	}
	if err := h.survey.SaveDemographics(r.Context(), id, d); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/draft/benefits
func (h *SurveyHandler) handleSaveBenefits(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var b domain.BenefitsAnswers
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, err)
		return
	}
	if err := h.survey.SaveBenefits(r.Context(), id, b); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/draft/contact
func (h *SurveyHandler) handleSaveContact(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var c domain.ContactAnswers
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, err)
		return
	}
	if err := h.survey.SaveContact(r.Context(), id, c); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/draft/advance/{step}
func (h *SurveyHandler) handleCanAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	step, err := stepParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ok, err := h.survey.CanAdvance(r.Context(), id, step)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"step": step, "can_advance": ok})
}

// POST /api/responses
func (h *SurveyHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Contact           *domain.ContactAnswers `json:"contact"`
		Subscribe         any                    `json:"subscribe"`
		StoryOptIn        any                    `json:"story_opt_in"`
		ResponseSessionID string                 `json:"response_session_id"`
		Timings           map[string]int         `json:"timings"`
		MilitaryScore     int                    `json:"military_score"`
		CivilianScore     int                    `json:"civilian_score"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.survey.Submit(r.Context(), id, app.SubmitRequest{
		Contact:           body.Contact,
		Subscribe:         body.Subscribe,
		StoryOptIn:        body.StoryOptIn,
		ResponseSessionID: body.ResponseSessionID,
		Timings:           body.Timings,
		ClientMilitary:    body.MilitaryScore,
		ClientCivilian:    body.CivilianScore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	// the draft is only cleared once the submission is durably stored
	if err := h.survey.ResetDraft(r.Context(), id); err != nil {
		h.log.Warn("draft cleanup after submit failed", zap.String("draft_id", id), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, result)
}

// POST /api/tracking/session
func (h *SurveyHandler) handleInitSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID      string `json:"session_id"`
		TotalQuestions int    `json:"total_questions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sessionID := h.tracker.InitSession(r.Context(), req.SessionID, req.TotalQuestions, r.UserAgent())
	if id := r.Header.Get("X-Draft-ID"); id != "" {
		if err := h.survey.AttachTracking(r.Context(), id, sessionID); err != nil {
			h.log.Warn("attaching tracking session to draft failed", zap.String("draft_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sessionID})
}

// POST /api/tracking/response
func (h *SurveyHandler) handleRecordResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID     string `json:"session_id"`
		QuestionIndex int    `json:"question_index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SessionID == "" {
		writeError(w, domain.NewValidationError("session_id", "required"))
		return
	}
	h.tracker.RecordResponse(r.Context(), req.SessionID, req.QuestionIndex)
	w.WriteHeader(http.StatusAccepted)
}
