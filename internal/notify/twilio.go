// Package notify delivers beta access codes over an out-of-band channel.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds Twilio messaging credentials. Unset AccountSID means delivery
// is disabled and callers should fall back to the no-op sender.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

// TwilioSender sends access codes as SMS through the Twilio messaging REST
// API. Delivery is fire-and-forget from the caller's point of view; the
// sender retries transient failures internally.
type TwilioSender struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
	backoff    time.Duration
}

func NewTwilioSender(cfg Config, log *zap.Logger) (*TwilioSender, error) {
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("missing twilio account sid")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("missing twilio auth token")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("missing twilio from number")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if log == nil {
		log = zap.NewNop()
	}
	return &TwilioSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
		maxRetries: 3,
		backoff:    time.Second,
	}, nil
}

// SendAccessCode texts the shared beta code to the given phone number.
func (s *TwilioSender) SendAccessCode(ctx context.Context, to, code string) error {
	form := url.Values{}
	form.Set("To", strings.TrimSpace(to))
	form.Set("From", s.cfg.FromNumber)
	form.Set("Body", fmt.Sprintf("Your Veteran Culture Project access code: %s", code))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.cfg.BaseURL, s.cfg.AccountSID)

	backoff := s.backoff
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = s.post(ctx, endpoint, form)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == s.maxRetries {
			return lastErr
		}
		s.log.Warn("access code delivery retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return lastErr
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type httpError struct {
	statusCode int
	body       string
}

func (e *httpError) Error() string {
	msg := strings.TrimSpace(e.body)
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("twilio http %d: %s", e.statusCode, msg)
}

func (s *TwilioSender) post(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Message != "" {
			return &httpError{statusCode: resp.StatusCode, body: ae.Message}
		}
		return &httpError{statusCode: resp.StatusCode, body: string(raw)}
	}
	return nil
}

func retryable(err error) bool {
	var he *httpError
	if errors.As(err, &he) {
		return he.statusCode == http.StatusTooManyRequests || he.statusCode >= 500
	}
	// network-level failures are worth one more try
	return true
}

// NoopSender drops access codes, used when messaging is unconfigured.
type NoopSender struct {
	log *zap.Logger
}

func NewNoopSender(log *zap.Logger) *NoopSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoopSender{log: log}
}

func (s *NoopSender) SendAccessCode(_ context.Context, to, _ string) error {
	s.log.Info("messaging unconfigured, access code not delivered", zap.String("to", to))
	return nil
}
