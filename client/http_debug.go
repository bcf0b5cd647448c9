package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog/log"
)

// debugTransport dumps every request and response at debug level.
//
// When to use:
//   - Set WELLBEING_DEBUG=true or DEBUG=true environment variable
//   - When a call fails with a message that does not explain itself
//   - When checking which headers (token, request id) actually go out
//
// Security considerations:
//   - Logs full request/response bodies including the bearer token and
//     journal notes
//   - Only enable in development environments
//
// Example usage:
//
//	export WELLBEING_DEBUG=true
//	wellbeingctl journal list  # Client will now log all HTTP traffic
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}

	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested checks if HTTP debug logging should be enabled.
//
// Activation methods:
//   - WELLBEING_DEBUG=true (client-specific debug flag)
//   - DEBUG=true (general debug flag, common in development workflows)
func debugLoggingRequested() bool {
	return os.Getenv("WELLBEING_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
