package domain

import (
	"regexp"
	"strings"
)

// emailPattern accepts addresses whose TLD is on the allow list. Intentionally
// stricter than RFC 5322: the survey only needs to reach common mailboxes.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.(?i:com|net|org|edu|gov|mil|io|co|us|me|info|biz|app|dev|vet)$`)

// ValidEmail reports whether the address matches the allow-listed TLD patterns.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Validate checks the required contact fields. It returns a *ValidationError
// for the first failing field, nil when the contact block is submittable.
func (c ContactAnswers) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return NewValidationError("first_name", "required")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return NewValidationError("last_name", "required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return NewValidationError("email", "required")
	}
	if !ValidEmail(c.Email) {
		return NewValidationError("email", "invalid format")
	}
	return nil
}

// ValidateAnswer rejects answers whose axis or offset fall outside the fixed
// five-point scale before they can enter a draft or the scoring engine.
func ValidateAnswer(a AnswerRecord) error {
	if strings.TrimSpace(a.Question) == "" {
		return NewValidationError("question", "required")
	}
	if !a.Axis.Valid() {
		return NewValidationError("axis", "must be X or Y")
	}
	if a.Offset < OffsetMin || a.Offset > OffsetMax {
		return NewValidationError("offset", "out of range")
	}
	return nil
}
