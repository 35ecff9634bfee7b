package http

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/app"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFrom extracts the verified token claims placed by the auth middleware.
func ClaimsFrom(ctx context.Context) *app.Claims {
	claims, _ := ctx.Value(claimsKey).(*app.Claims)
	return claims
}

// Auth guards handlers behind the gate and admin token scopes.
type Auth struct {
	access *app.AccessService
	log    *zap.Logger
}

func NewAuth(access *app.AccessService, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{access: access, log: log}
}

// bearerToken pulls the token from the Authorization header, falling back to
// the token query parameter for websocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (a *Auth) require(scope string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, domain.ErrAccessDenied)
			return
		}
		claims, err := a.access.ParseToken(token)
		if err != nil {
			a.log.Debug("token rejected", zap.Error(err))
			writeError(w, domain.ErrAccessDenied)
			return
		}
		// an admin token also clears the survey gate
		if claims.Scope != scope && !(scope == app.ScopeGate && claims.Scope == app.ScopeAdmin) {
			writeError(w, domain.ErrAccessDenied)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// RequireGate admits requests holding a valid gate (or admin) token.
func (a *Auth) RequireGate(next http.HandlerFunc) http.HandlerFunc {
	return a.require(app.ScopeGate, next)
}

// RequireAdmin admits requests holding a valid admin token.
func (a *Auth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.require(app.ScopeAdmin, next)
}
