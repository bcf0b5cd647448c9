package api

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client/internal/rest"
)

// Requester is the slice of the HTTP layer the domain calls need.
// *rest.Executor satisfies it; tests may substitute their own.
type Requester interface {
	Do(ctx context.Context, req rest.Request, out any) error
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// logFailure records a failed domain call before the error is returned
// unchanged to the caller.
func logFailure(op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("api call failed")
	return err
}
