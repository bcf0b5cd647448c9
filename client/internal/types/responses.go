package types

// ------------------------------
// Response Envelopes
// ------------------------------
//
// Each endpoint gets its own envelope. Normalize applies the defaulting rules
// at the boundary so callers never see a nil list for an absent field.

// MessageResponse is the generic acknowledgment most write endpoints return.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// QuestionsResponse wraps GET /test/questions.
type QuestionsResponse struct {
	Message   string     `json:"message,omitempty"`
	Questions []Question `json:"questions"`
}

// Normalize defaults an absent questions field to an empty list.
func (r *QuestionsResponse) Normalize() []Question {
	if r == nil || r.Questions == nil {
		return []Question{}
	}
	for i := range r.Questions {
		if r.Questions[i].Options == nil {
			r.Questions[i].Options = []Option{}
		}
	}
	return r.Questions
}

// TestResultsResponse wraps GET /test/results.
type TestResultsResponse struct {
	Message string       `json:"message,omitempty"`
	Results []TestResult `json:"results"`
}

// Normalize defaults an absent results field to an empty list.
func (r *TestResultsResponse) Normalize() []TestResult {
	if r == nil || r.Results == nil {
		return []TestResult{}
	}
	return r.Results
}

// SubmitTestResponse is returned by POST /test/submit.
type SubmitTestResponse struct {
	Message    string `json:"message,omitempty"`
	TotalScore int    `json:"total_score"`
}

// JournalsResponse wraps GET /journal.
type JournalsResponse struct {
	Message  string         `json:"message,omitempty"`
	Journals []JournalEntry `json:"journals"`
}

// Normalize defaults an absent journals field to an empty list.
func (r *JournalsResponse) Normalize() []JournalEntry {
	if r == nil || r.Journals == nil {
		return []JournalEntry{}
	}
	return r.Journals
}

// AskResponse is returned by POST /ai/ask.
type AskResponse struct {
	Response string `json:"response"`
}

// TokenResponse is the credential exchange envelope shared by /token,
// /auth/login, /auth/register and /auth/refresh. Register may answer with only
// a message, in which case AccessToken is empty.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Result converts the envelope to an AuthResult, defaulting the token type to
// "bearer".
func (r TokenResponse) Result() *AuthResult {
	tt := r.TokenType
	if tt == "" {
		tt = "bearer"
	}
	return &AuthResult{AccessToken: r.AccessToken, TokenType: tt, User: r.User}
}
