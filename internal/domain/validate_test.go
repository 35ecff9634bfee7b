package domain

import "testing"

func TestValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"a@b.com", true},
		{"first.last@unit.mil", true},
		{"vet@example.org", true},
		{"someone@sub.domain.io", true},
		{"nope", false},
		{"no-at-sign.com", false},
		{"space in@addr.com", false},
		{"user@host.unknowntld", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidEmail(tc.email); got != tc.want {
			t.Fatalf("ValidEmail(%q)=%v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestContactValidation(t *testing.T) {
	valid := ContactAnswers{FirstName: "A", LastName: "B", Email: "a@b.com"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid contact, got %v", err)
	}

	missing := ContactAnswers{FirstName: "A", LastName: "B"}
	err := missing.Validate()
	if err == nil {
		t.Fatalf("expected error for missing email")
	}
	ve, ok := err.(*ValidationError)
	if !ok || ve.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestValidateAnswerBounds(t *testing.T) {
	if err := ValidateAnswer(AnswerRecord{Question: "q", Axis: AxisMilitary, Offset: 2}); err != nil {
		t.Fatalf("expected valid answer, got %v", err)
	}
	if err := ValidateAnswer(AnswerRecord{Question: "q", Axis: AxisMilitary, Offset: 3}); err == nil {
		t.Fatalf("expected offset out of range to be rejected")
	}
	if err := ValidateAnswer(AnswerRecord{Question: "q", Axis: "Z", Offset: 1}); err == nil {
		t.Fatalf("expected unknown axis to be rejected")
	}
}
