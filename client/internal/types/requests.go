package types

// ------------------------------
// Request Types
// ------------------------------

// LoginRequest is the JSON login body used by the /auth/login transport.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	FullName  string  `json:"full_name"`
	Email     string  `json:"mail"`
	Password  string  `json:"password"`
	BirthDate *string `json:"birth_date,omitempty"` // YYYY-MM-DD
	Role      Role    `json:"role"`
}

// QuestionInput is the body of /test/add-question.
type QuestionInput struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// SubmitTestRequest maps question id to the selected option index.
type SubmitTestRequest struct {
	Answers map[int]int `json:"answers"`
}

// CreateJournalEntryRequest is the body of POST /journal.
type CreateJournalEntryRequest struct {
	Score int     `json:"score"`
	Note  *string `json:"note"`
}

// AskRequest is the body of POST /ai/ask.
type AskRequest struct {
	Prompt string `json:"prompt"`
}
