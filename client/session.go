package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoSession is returned when an operation needs a session that was never
// begun, and by a TokenStore that holds nothing.
var ErrNoSession = errors.New("no active session")

// SessionState is what a TokenStore persists.
type SessionState struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        *User  `json:"user,omitempty"`
}

// TokenStore persists the session between process runs.
type TokenStore interface {
	// Load returns ErrNoSession when nothing was saved.
	Load(ctx context.Context) (SessionState, error)
	Save(ctx context.Context, st SessionState) error
	Clear(ctx context.Context) error
}

// Session holds the bearer token and user of the signed-in account. The HTTP
// layer only reads it; Begin, SetUser and Clear are the only writers.
type Session struct {
	mu    sync.RWMutex
	state SessionState
	store TokenStore
}

// NewSession returns an empty session backed by store. A nil store keeps the
// session in memory only.
func NewSession(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &Session{store: store}
}

// Init restores a previously saved session. An empty store is not an error.
func (s *Session) Init(ctx context.Context) error {
	st, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// Begin installs a fresh credential and persists it.
func (s *Session) Begin(ctx context.Context, res *AuthResult) error {
	if res == nil || res.AccessToken == "" {
		return fmt.Errorf("begin session: missing access token")
	}
	st := SessionState{AccessToken: res.AccessToken, TokenType: res.TokenType, User: res.User}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	sessionsBegun.Inc()
	if err := s.store.Save(ctx, st); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SetUser caches the account behind the token.
func (s *Session) SetUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	s.state.User = u
	st := s.state
	s.mu.Unlock()
	if st.AccessToken == "" {
		return nil
	}
	return s.store.Save(ctx, st)
}

// Clear forgets the credential in memory and in the store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = SessionState{}
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

// Token returns the bearer token or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// User returns the cached account, if known.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// State returns a copy of the current session.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.state.AccessToken = token
	if s.state.TokenType == "" {
		s.state.TokenType = "bearer"
	}
	s.mu.Unlock()
}

// MemoryTokenStore keeps the session for the life of the process.
type MemoryTokenStore struct {
	mu    sync.Mutex
	state *SessionState
}

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore { return &MemoryTokenStore{} }

func (m *MemoryTokenStore) Load(context.Context) (SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return SessionState{}, ErrNoSession
	}
	return *m.state, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, st SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &st
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}
