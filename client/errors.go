package client

import (
	sdkerrors "github.com/Cowspump/some-diploma-stuff/client/internal/errors"
)

// Error types re-exported so callers can errors.As against a single package.
type (
	NetworkError  = sdkerrors.NetworkError
	HTTPError     = sdkerrors.HTTPError
	ParseError    = sdkerrors.ParseError
	AuthError     = sdkerrors.AuthError
	ErrorCategory = sdkerrors.ErrorCategory
)

const (
	Recoverable   = sdkerrors.Recoverable
	Irrecoverable = sdkerrors.Irrecoverable
)

// Sentinels matched by HTTPError through errors.Is.
var (
	ErrUnauthorized = sdkerrors.ErrUnauthorized
	ErrForbidden    = sdkerrors.ErrForbidden
	ErrNotFound     = sdkerrors.ErrNotFound
)

// IsTimeout reports whether err is an attempt that hit its deadline.
func IsTimeout(err error) bool { return sdkerrors.IsTimeout(err) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int { return sdkerrors.StatusCode(err) }

// Message returns the text a user should see for err.
func Message(err error) string { return sdkerrors.Message(err) }
