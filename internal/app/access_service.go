package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// Token scopes carried in the JWT claims.
const (
	ScopeGate  = "gate"
	ScopeAdmin = "admin"
)

// Claims are the signed token claims for both the survey gate and admin
// identities.
type Claims struct {
	Scope string `json:"scope"`
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AccessService owns the shared-password survey gate, admin credentials and
// the beta access request workflow.
type AccessService struct {
	store    AccessRepository
	sender   CodeSender
	log      *zap.Logger
	betaCode string
	secret   []byte
	gateTTL  time.Duration
	adminTTL time.Duration

	now   func() time.Time
	newID func() string
}

func NewAccessService(store AccessRepository, sender CodeSender, betaCode string, secret []byte, gateTTL, adminTTL time.Duration, log *zap.Logger) *AccessService {
	if log == nil {
		log = zap.NewNop()
	}
	if gateTTL <= 0 {
		gateTTL = 24 * time.Hour
	}
	if adminTTL <= 0 {
		adminTTL = 12 * time.Hour
	}
	return &AccessService{
		store:    store,
		sender:   sender,
		log:      log,
		betaCode: betaCode,
		secret:   secret,
		gateTTL:  gateTTL,
		adminTTL: adminTTL,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// VerifyBetaCode checks the shared survey password and issues a gate token.
func (s *AccessService) VerifyBetaCode(code string) (string, error) {
	if s.betaCode == "" ||
		subtle.ConstantTimeCompare([]byte(code), []byte(s.betaCode)) != 1 {
		return "", domain.ErrAccessDenied
	}
	return s.sign(Claims{Scope: ScopeGate}, s.gateTTL)
}

// AdminLogin verifies admin credentials and issues an admin token.
func (s *AccessService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	admin, err := s.store.AdminByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.sign(Claims{Scope: ScopeAdmin, UID: admin.ID, Email: admin.Email}, s.adminTTL)
}

// CreateAdmin hashes the password and stores a new admin account.
func (s *AccessService) CreateAdmin(ctx context.Context, email, password string) (domain.AdminAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !domain.ValidEmail(email) {
		return domain.AdminAccount{}, domain.NewValidationError("email", "invalid format")
	}
	if len(password) < 8 {
		return domain.AdminAccount{}, domain.NewValidationError("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AdminAccount{}, err
	}
	admin := domain.AdminAccount{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return domain.AdminAccount{}, err
	}
	return admin, nil
}

// ParseToken validates a signed token and returns its claims.
func (s *AccessService) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := parsed.Claims.(*Claims); ok && parsed.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RequestAccess records a visitor's ask for the beta code.
func (s *AccessService) RequestAccess(ctx context.Context, email, phone string) (domain.AccessRequest, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !domain.ValidEmail(email) {
		return domain.AccessRequest{}, domain.NewValidationError("email", "invalid format")
	}
	req := domain.AccessRequest{
		ID:        s.newID(),
		Email:     email,
		Phone:     strings.TrimSpace(phone),
		Status:    domain.AccessPending,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateAccessRequest(ctx, req); err != nil {
		return domain.AccessRequest{}, err
	}
	return req, nil
}

// ListRequests returns all access requests, newest first by repository order.
func (s *AccessService) ListRequests(ctx context.Context) ([]domain.AccessRequest, error) {
	return s.store.ListAccessRequests(ctx)
}

// Decide approves or denies a pending request. Approval sends the beta code
// over the side channel; delivery failure is logged and does not undo the
// decision.
func (s *AccessService) Decide(ctx context.Context, id string, approve bool) (domain.AccessRequest, error) {
	req, err := s.store.GetAccessRequest(ctx, id)
	if err != nil {
		return domain.AccessRequest{}, err
	}
	if req == nil {
		return domain.AccessRequest{}, domain.ErrRequestNotFound
	}
	decided := s.now()
	req.DecidedAt = &decided
	req.Status = domain.AccessDenied
	if approve {
		req.Status = domain.AccessApproved
	}
	if err := s.store.UpdateAccessRequest(ctx, *req); err != nil {
		return domain.AccessRequest{}, err
	}
	if approve && s.sender != nil && req.Phone != "" {
		if err := s.sender.SendAccessCode(ctx, req.Phone, s.betaCode); err != nil {
			s.log.Warn("access code delivery failed", zap.String("request_id", req.ID), zap.Error(err))
		}
	}
	return *req, nil
}

func (s *AccessService) sign(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
