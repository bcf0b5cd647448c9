package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Role is the account kind; it decides which endpoints a user may call.
type Role string

const (
	RoleWorker    Role = "worker"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleWorker, RoleTherapist, RoleAdmin:
		return true
	}
	return false
}

// User is the session identity returned by login and /auth/me.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// AuthResult is the outcome of a credential exchange.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

// Option is one answer choice of a test question.
type Option struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// Question is a scored well-being test question.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// TestResult is one stored test submission.
type TestResult struct {
	ID         int       `json:"id"`
	TotalScore int       `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// JournalEntry is a mood journal record. Score is 0-5.
type JournalEntry struct {
	ID        int       `json:"id"`
	Score     int       `json:"wellbeing_score"`
	Note      *string   `json:"note_text"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteText returns the note or "" when none was written.
func (e JournalEntry) NoteText() string {
	if e.Note == nil {
		return ""
	}
	return *e.Note
}
