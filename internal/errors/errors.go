package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Kind groups error codes into the categories callers branch on
type Kind string

const (
	// KindValidation is raised before any external call and is fixed by correcting input
	KindValidation Kind = "validation"
	// KindService covers transport failures, non-2xx responses and timeouts
	KindService Kind = "service"
	// KindInterpretation covers completions that cannot be turned into an artifact or verdict
	KindInterpretation Kind = "interpretation"
	// KindSession covers state machine misuse
	KindSession Kind = "session"
	// KindConfig covers configuration loading problems
	KindConfig Kind = "config"
)

// Error categories
const (
	// Validation errors (VALIDATION-001 to VALIDATION-099)
	ErrCodeNarrativeRequired   ErrorCode = "VALIDATION-001"
	ErrCodeInvalidURL          ErrorCode = "VALIDATION-002"
	ErrCodeInvalidPriority     ErrorCode = "VALIDATION-003"
	ErrCodeIncompleteCreds     ErrorCode = "VALIDATION-004"
	ErrCodeUnknownTag          ErrorCode = "VALIDATION-005"
	ErrCodeUnknownDialect      ErrorCode = "VALIDATION-006"
	ErrCodeInvalidDialect      ErrorCode = "VALIDATION-007"
	ErrCodeEmptyArtifact       ErrorCode = "VALIDATION-008"
	ErrCodeDuplicateDialect    ErrorCode = "VALIDATION-009"
	ErrCodeMissingPromptInputs ErrorCode = "VALIDATION-010"
	ErrCodeUnreadableInput     ErrorCode = "VALIDATION-011"

	// Service errors (SERVICE-001 to SERVICE-099)
	ErrCodeServiceTransport ErrorCode = "SERVICE-001"
	ErrCodeServiceStatus    ErrorCode = "SERVICE-002"
	ErrCodeServiceTimeout   ErrorCode = "SERVICE-003"
	ErrCodeServiceMalformed ErrorCode = "SERVICE-004"
	ErrCodeServiceAuth      ErrorCode = "SERVICE-005"
	ErrCodeServiceRateLimit ErrorCode = "SERVICE-006"

	// Interpretation errors (INTERPRET-001 to INTERPRET-099)
	ErrCodeEmptyCompletion  ErrorCode = "INTERPRET-001"
	ErrCodeVerdictNotJSON   ErrorCode = "INTERPRET-002"
	ErrCodeVerdictSchema    ErrorCode = "INTERPRET-003"
	ErrCodeVerdictInvariant ErrorCode = "INTERPRET-004"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionBusy       ErrorCode = "SESSION-001"
	ErrCodeInvalidTransition ErrorCode = "SESSION-002"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigRead    ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid ErrorCode = "CONFIG-002"
	ErrCodeMissingAPIKey ErrorCode = "CONFIG-003"
)

// KindOf maps an error code to its category using the code prefix
func KindOf(code ErrorCode) Kind {
	prefix, _, _ := strings.Cut(string(code), "-")
	switch prefix {
	case "VALIDATION":
		return KindValidation
	case "SERVICE":
		return KindService
	case "INTERPRET":
		return KindInterpretation
	case "SESSION":
		return KindSession
	case "CONFIG":
		return KindConfig
	default:
		return ""
	}
}

// ScriptsmithError represents an enhanced error with code, suggestions, and documentation
type ScriptsmithError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *ScriptsmithError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ScriptsmithError) Unwrap() error {
	return e.Cause
}

// Kind returns the category of the error
func (e *ScriptsmithError) Kind() Kind {
	return KindOf(e.Code)
}

// New creates a new ScriptsmithError
func New(code ErrorCode, message string) *ScriptsmithError {
	return &ScriptsmithError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ScriptsmithError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ScriptsmithError {
	return &ScriptsmithError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ScriptsmithError) WithSuggestion(suggestion string) *ScriptsmithError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ScriptsmithError) WithSuggestions(suggestions ...string) *ScriptsmithError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *ScriptsmithError) WithDocs(url string) *ScriptsmithError {
	e.DocsURL = url
	return e
}

// As returns the first ScriptsmithError in err's chain
func As(err error) (*ScriptsmithError, bool) {
	var se *ScriptsmithError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether any ScriptsmithError in err's chain belongs to kind
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var se *ScriptsmithError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Kind() == kind {
			return true
		}
		err = se.Cause
	}
	return false
}

// HasCode reports whether any ScriptsmithError in err's chain carries code
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *ScriptsmithError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Cause
	}
	return false
}

// Common error constructors for frequently used errors

// NewNarrativeRequiredError is returned when a scenario has no narrative text
func NewNarrativeRequiredError() *ScriptsmithError {
	return New(ErrCodeNarrativeRequired, "test scenario narrative is required").
		WithSuggestion("Describe the scenario, e.g. \"open the login page, sign in and verify the dashboard\"").
		WithSuggestion("Pass it as arguments or with --file")
}

// NewUnknownDialectError lists the dialects that are known
func NewUnknownDialectError(name string, known []string) *ScriptsmithError {
	return New(ErrCodeUnknownDialect, fmt.Sprintf("unknown dialect: %s", name)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(known, ", "))).
		WithSuggestion("Run 'scriptsmith dialects' to see the registered dialects")
}

// NewServiceStatusError creates an error for a non-2xx completion response
func NewServiceStatusError(service string, status int, body string) *ScriptsmithError {
	return New(ErrCodeServiceStatus, fmt.Sprintf("%s returned HTTP %d: %s", service, status, body)).
		WithSuggestion("Retry the request, or fall back to offline mode with --backend offline")
}

// NewServiceAuthError creates a completion service authentication error
func NewServiceAuthError(service string) *ScriptsmithError {
	return New(ErrCodeServiceAuth, fmt.Sprintf("authentication failed for %s", service)).
		WithSuggestion(fmt.Sprintf("Set the %s_API_KEY environment variable", strings.ToUpper(service))).
		WithSuggestion("Check if your API key is valid and not expired")
}

// NewServiceRateLimitError creates a rate limit error
func NewServiceRateLimitError(service string, retryAfter string) *ScriptsmithError {
	msg := fmt.Sprintf("rate limit exceeded for %s", service)
	if retryAfter != "" {
		msg += fmt.Sprintf(" (retry after: %s)", retryAfter)
	}

	return New(ErrCodeServiceRateLimit, msg).
		WithSuggestion("Wait before retrying the request").
		WithSuggestion("Switch to offline mode with --backend offline")
}

// NewSessionBusyError is returned when a second operation is started while one is outstanding
func NewSessionBusyError(op string) *ScriptsmithError {
	return New(ErrCodeSessionBusy, fmt.Sprintf("cannot %s: another operation is in flight", op)).
		WithSuggestion("Wait for the outstanding generation or check to finish")
}

// NewInvalidTransitionError is returned when an operation is not allowed in the current state
func NewInvalidTransitionError(op string, state string) *ScriptsmithError {
	return New(ErrCodeInvalidTransition, fmt.Sprintf("cannot %s while session is %s", op, state))
}

// NewConfigUnmarshalError creates a config parse error
func NewConfigUnmarshalError(path string, cause error) *ScriptsmithError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("failed to parse YAML file: %s", path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion("Ensure the file is valid YAML")
}
