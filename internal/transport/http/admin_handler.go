package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/app"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// AdminHandler serves the administrator API: login, results, analytics,
// catalog management and the access request queue.
type AdminHandler struct {
	admin  *app.AdminService
	access *app.AccessService
	auth   *Auth
	log    *zap.Logger
}

func NewAdminHandler(admin *app.AdminService, access *app.AccessService, auth *Auth, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{admin: admin, access: access, auth: auth, log: log}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/admin/login", h.handleLogin)

	mux.HandleFunc("GET /api/admin/submissions", h.auth.RequireAdmin(h.handleListSubmissions))
	mux.HandleFunc("GET /api/admin/submissions/{id}", h.auth.RequireAdmin(h.handleGetSubmission))
	mux.HandleFunc("DELETE /api/admin/submissions/{id}", h.auth.RequireAdmin(h.handleDeleteSubmission))
	mux.HandleFunc("GET /api/admin/analytics", h.auth.RequireAdmin(h.handleSummary))
	mux.HandleFunc("GET /api/admin/questions", h.auth.RequireAdmin(h.handleListQuestions))
	mux.HandleFunc("POST /api/admin/questions", h.auth.RequireAdmin(h.handleCreateQuestion))
	mux.HandleFunc("PUT /api/admin/questions/{id}", h.auth.RequireAdmin(h.handleUpdateQuestion))
	mux.HandleFunc("DELETE /api/admin/questions/{id}", h.auth.RequireAdmin(h.handleDeleteQuestion))
	mux.HandleFunc("GET /api/admin/access-requests", h.auth.RequireAdmin(h.handleListAccessRequests))
	mux.HandleFunc("POST /api/admin/access-requests/{id}/decision", h.auth.RequireAdmin(h.handleDecide))
}

// POST /api/admin/login
func (h *AdminHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := h.access.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GET /api/admin/submissions
func (h *AdminHandler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.admin.ListSubmissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

// GET /api/admin/submissions/{id}
func (h *AdminHandler) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	detail, err := h.admin.GetSubmission(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DELETE /api/admin/submissions/{id}
func (h *AdminHandler) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteSubmission(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/analytics
func (h *AdminHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.admin.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/admin/questions
func (h *AdminHandler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.admin.ListQuestions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// POST /api/admin/questions
func (h *AdminHandler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.admin.CreateQuestion(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// PUT /api/admin/questions/{id}
func (h *AdminHandler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, err)
		return
	}
	q.ID = r.PathValue("id")
	if err := h.admin.UpdateQuestion(r.Context(), q); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// DELETE /api/admin/questions/{id}
func (h *AdminHandler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteQuestion(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/access-requests
func (h *AdminHandler) handleListAccessRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.access.ListRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// POST /api/admin/access-requests/{id}/decision
func (h *AdminHandler) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Approve bool `json:"approve"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	decided, err := h.access.Decide(r.Context(), r.PathValue("id"), req.Approve)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decided)
}
