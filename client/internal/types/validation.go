package types

import (
	"fmt"
	"strings"
	"time"
)

// Journal score bounds accepted by the backend.
const (
	MinMoodScore = 0
	MaxMoodScore = 5

	// MinPasswordLength mirrors the sign-up form rule.
	MinPasswordLength = 8

	birthDateLayout = "2006-01-02"
)

// ValidateCredentials checks a login pair before it goes on the wire.
func ValidateCredentials(identifier, secret string) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("email is required")
	}
	if secret == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateRegister checks a registration profile.
func ValidateRegister(req RegisterRequest) error {
	if strings.TrimSpace(req.FullName) == "" {
		return fmt.Errorf("full name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if len(req.Password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("invalid role %q: must be 'worker', 'therapist' or 'admin'", req.Role)
	}
	if req.BirthDate != nil {
		if _, err := time.Parse(birthDateLayout, *req.BirthDate); err != nil {
			return fmt.Errorf("birth date must be YYYY-MM-DD")
		}
	}
	return nil
}

// ValidateMoodScore enforces the 0-5 journal scale.
func ValidateMoodScore(score int) error {
	if score < MinMoodScore || score > MaxMoodScore {
		return fmt.Errorf("score must be %d-%d", MinMoodScore, MaxMoodScore)
	}
	return nil
}

// ValidateQuestion checks a question before a therapist submits it.
func ValidateQuestion(q QuestionInput) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is required")
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("question needs at least one option")
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("option %d: text is required", i)
		}
	}
	return nil
}

// ValidateID rejects non-positive resource ids.
func ValidateID(id int, field string) error {
	if id <= 0 {
		return fmt.Errorf("%s must be a positive integer", field)
	}
	return nil
}

// ValidatePrompt rejects blank assistant prompts.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}
