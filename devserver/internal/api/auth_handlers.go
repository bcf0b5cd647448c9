package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/store"
)

const (
	badCredentialsDetail = "Incorrect email or password"
	invalidRoleDetail    = "Invalid role. Must be 'worker', 'therapist' or 'admin'"
	emailTakenDetail     = "Email already registered"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenForm handles POST /token with an OAuth2 password form.
func (h *Handler) TokenForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		respond.WriteBadRequest(w, "invalid form body")
		return
	}
	h.login(w, r, http.StatusBadRequest, r.PostForm.Get("username"), r.PostForm.Get("password"))
}

// LoginJSON handles POST /auth/login.
func (h *Handler) LoginJSON(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	h.login(w, r, http.StatusUnauthorized, req.Email, req.Password)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, failStatus int, email, password string) {
	u, err := h.store.UserByEmail(r.Context(), strings.TrimSpace(email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Msg("login lookup")
		respond.WriteInternalError(w, "")
		return
	}
	if u == nil || !h.auth.CheckPassword(u.PasswordHash, password) {
		authEvents.WithLabelValues("login", "rejected").Inc()
		respond.WriteError(w, failStatus, badCredentialsDetail)
		return
	}
	h.issue(w, http.StatusOK, u, "login")
}

func (h *Handler) issue(w http.ResponseWriter, status int, u *store.User, op string) {
	token, err := h.auth.IssueToken(u.Email, string(u.Role))
	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("issue token")
		respond.WriteInternalError(w, "")
		return
	}
	authEvents.WithLabelValues(op, "ok").Inc()
	respond.WriteJSON(w, status, client.AuthResult{AccessToken: token, TokenType: "bearer", User: u.Public()})
}

// Register handles POST /register. It only acknowledges the new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.createUser(w, r); !ok {
		return
	}
	respond.WriteJSON(w, http.StatusOK, client.MessageResponse{Message: "User created"})
}

// RegisterAndLogin handles POST /auth/register and answers with a token.
func (h *Handler) RegisterAndLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := h.createUser(w, r)
	if !ok {
		return
	}
	h.issue(w, http.StatusCreated, u, "register")
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	var req client.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return nil, false
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	switch {
	case req.FullName == "" || req.Email == "" || req.Password == "":
		respond.WriteBadRequest(w, "full_name, mail and password are required")
		return nil, false
	case !req.Role.Valid():
		respond.WriteBadRequest(w, invalidRoleDetail)
		return nil, false
	}
	if req.BirthDate != nil {
		if _, err := time.Parse(time.DateOnly, *req.BirthDate); err != nil {
			respond.WriteBadRequest(w, "birth_date must be YYYY-MM-DD")
			return nil, false
		}
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("hash password")
		respond.WriteInternalError(w, "")
		return nil, false
	}
	u := &store.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		BirthDate:    req.BirthDate,
	}
	err = h.store.CreateUser(r.Context(), u)
	if errors.Is(err, store.ErrConflict) {
		respond.WriteBadRequest(w, emailTakenDetail)
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Msg("create user")
		respond.WriteInternalError(w, "")
		return nil, false
	}
	log.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return u, true
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	respond.WriteJSON(w, http.StatusOK, u.Public())
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	h.issue(w, http.StatusOK, u, "refresh")
}
