package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client/internal/errors"
	"github.com/Cowspump/some-diploma-stuff/client/internal/rest"
	"github.com/Cowspump/some-diploma-stuff/client/internal/types"
)

// LoginTransport selects how credentials are exchanged for a token.
type LoginTransport string

const (
	// TransportForm posts an OAuth2 password form to /token.
	TransportForm LoginTransport = "form"
	// TransportJSON posts {"email","password"} to /auth/login.
	TransportJSON LoginTransport = "json"
)

// ParseLoginTransport maps a config string to a transport; empty means form.
func ParseLoginTransport(s string) (LoginTransport, error) {
	switch LoginTransport(strings.ToLower(strings.TrimSpace(s))) {
	case "", TransportForm:
		return TransportForm, nil
	case TransportJSON:
		return TransportJSON, nil
	}
	return "", fmt.Errorf("unknown login transport %q: want form or json", s)
}

const (
	defaultLoginMessage    = "Login failed"
	defaultRegisterMessage = "Registration failed"
	defaultRefreshMessage  = "Session refresh failed"
)

var errNoToken = stderrors.New("response carried no access token")

// Login exchanges credentials for an access token.
func Login(ctx context.Context, r Requester, transport LoginTransport, identifier, secret string) (*types.AuthResult, error) {
	if err := types.ValidateCredentials(identifier, secret); err != nil {
		return nil, &errors.AuthError{Op: "login", Message: err.Error()}
	}

	var tr types.TokenResponse
	var err error
	switch transport {
	case TransportJSON:
		err = r.Post(ctx, "/auth/login", types.LoginRequest{Email: identifier, Password: secret}, &tr)
	default:
		form := url.Values{}
		form.Set("username", identifier)
		form.Set("password", secret)
		err = r.Do(ctx, rest.NewFormRequest("/token", form), &tr)
	}
	if err != nil {
		return nil, authFailure("login", defaultLoginMessage, err)
	}
	if tr.AccessToken == "" {
		return nil, authFailure("login", defaultLoginMessage, errNoToken)
	}

	log.Debug().Str("op", "login").Str("transport", string(transport)).Msg("authenticated")
	return tr.Result(), nil
}

// Register creates an account. When the backend acknowledges without issuing
// a token, Register logs in with the same credentials so callers always get
// an AuthResult back.
func Register(ctx context.Context, r Requester, transport LoginTransport, req types.RegisterRequest) (*types.AuthResult, error) {
	if err := types.ValidateRegister(req); err != nil {
		return nil, &errors.AuthError{Op: "register", Message: err.Error()}
	}

	path := "/register"
	if transport == TransportJSON {
		path = "/auth/register"
	}

	var tr types.TokenResponse
	if err := r.Post(ctx, path, req, &tr); err != nil {
		return nil, authFailure("register", defaultRegisterMessage, err)
	}
	if tr.AccessToken != "" {
		return tr.Result(), nil
	}

	log.Debug().Str("op", "register").Str("message", tr.Message).Msg("account created, logging in")
	res, err := Login(ctx, r, transport, req.Email, req.Password)
	if err != nil {
		// report the follow-up login under register, keeping its cause
		cause := err
		var ae *errors.AuthError
		if stderrors.As(err, &ae) && ae.Err != nil {
			cause = ae.Err
		}
		return nil, authFailure("register", defaultRegisterMessage, cause)
	}
	return res, nil
}

// CurrentUser returns the identity behind the current bearer token.
func CurrentUser(ctx context.Context, r Requester) (*types.User, error) {
	var u types.User
	if err := r.Get(ctx, "/auth/me", &u); err != nil {
		return nil, logFailure("current user", err)
	}
	return &u, nil
}

// Refresh trades the current bearer token for a fresh one.
func Refresh(ctx context.Context, r Requester) (*types.AuthResult, error) {
	var tr types.TokenResponse
	if err := r.Post(ctx, "/auth/refresh", nil, &tr); err != nil {
		return nil, authFailure("refresh", defaultRefreshMessage, err)
	}
	if tr.AccessToken == "" {
		return nil, authFailure("refresh", defaultRefreshMessage, errNoToken)
	}
	return tr.Result(), nil
}

// authFailure wraps err in an AuthError whose message is the backend detail
// when one was sent, otherwise fallback.
func authFailure(op, fallback string, err error) error {
	msg := fallback
	var he *errors.HTTPError
	if stderrors.As(err, &he) && he.Message != "" && he.Message != errors.FallbackMessage(he.StatusCode) {
		msg = he.Message
	}
	log.Error().Err(err).Str("op", op).Msg("authentication failed")
	return &errors.AuthError{Op: op, Message: msg, Err: err}
}
