package provider

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// maxErrorBody bounds how much of an error response ends up in messages
const maxErrorBody = 512

// statusError maps a non-2xx response onto a service error
func statusError(service string, resp *http.Response, body []byte) error {
	msg := errorMessage(body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewServiceAuthError(service).
			WithSuggestion(fmt.Sprintf("%s said: %s", service, msg))
	case http.StatusTooManyRequests:
		return errors.NewServiceRateLimitError(service, resp.Header.Get("Retry-After"))
	default:
		return errors.NewServiceStatusError(service, resp.StatusCode, msg)
	}
}

// transportError classifies a failed round trip as a timeout or a transport failure
func transportError(service string, err error) error {
	if isTimeout(err) {
		return errors.Wrap(errors.ErrCodeServiceTimeout, fmt.Sprintf("%s request timed out", service), err).
			WithSuggestion("Increase provider.timeout in the config file")
	}
	return errors.Wrap(errors.ErrCodeServiceTransport, fmt.Sprintf("%s request failed", service), err).
		WithSuggestion("Check your network connection, or use --backend offline")
}

func malformedError(service, detail string, cause error) error {
	return errors.Wrap(errors.ErrCodeServiceMalformed, fmt.Sprintf("%s returned a malformed response: %s", service, detail), cause)
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// errorMessage extracts {"error":{"message":...}} when present, else the
// trimmed raw body
func errorMessage(body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}
