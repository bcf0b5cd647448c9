package client

import (
	"github.com/Cowspump/some-diploma-stuff/client/internal/api"
	"github.com/Cowspump/some-diploma-stuff/client/internal/rest"
	"github.com/Cowspump/some-diploma-stuff/client/internal/retry"
	"github.com/Cowspump/some-diploma-stuff/client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	RegisterRequest           = types.RegisterRequest
	QuestionInput             = types.QuestionInput
	CreateJournalEntryRequest = types.CreateJournalEntryRequest

	// Domain entities
	Role         = types.Role
	User         = types.User
	AuthResult   = types.AuthResult
	AnswerOption = types.Option
	Question     = types.Question
	TestResult   = types.TestResult
	JournalEntry = types.JournalEntry

	// Responses
	MessageResponse  = types.MessageResponse
	SubmitTestResult = types.SubmitTestResponse

	// Transport
	LoginTransport = api.LoginTransport
	RetryPolicy    = retry.Policy
)

const (
	RoleWorker    = types.RoleWorker
	RoleTherapist = types.RoleTherapist
	RoleAdmin     = types.RoleAdmin

	LoginForm = api.TransportForm
	LoginJSON = api.TransportJSON
)

// ExponentialBackoff builds the jitter-free doubling schedule used by
// RetryPolicy.NewBackOff.
var ExponentialBackoff = retry.Exponential

// RetryTransientOnly is an opt-in RetryPolicy.Retryable that gives up on 4xx
// answers other than 408 and 429 and on malformed bodies. The default
// predicate only stops early on timeouts and cancellations.
var RetryTransientOnly = rest.RetryTransientOnly
