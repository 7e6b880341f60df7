package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates the session ended with a ready verdict (or a command without a verdict succeeded)
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage or a rejected scenario
	UsageError = 2

	// ConfigError indicates the configuration could not be loaded
	ConfigError = 3

	// Interrupted indicates the operator cancelled the run
	Interrupted = 4

	// AuthError indicates the completion service rejected the credentials
	AuthError = 5

	// ServiceError indicates a transport failure, timeout or non-2xx response
	ServiceError = 6

	// InterpretationError indicates an unusable completion or verdict payload
	InterpretationError = 7

	// NeedsUpdate indicates the session ended while the last verdict still listed issues
	NeedsUpdate = 8
)

// ErrNeedsUpdate is returned by commands that end with an unresolved verdict
var ErrNeedsUpdate = stderrors.New("generated script still needs updates")

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, ErrNeedsUpdate) {
		return NeedsUpdate
	}
	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	if se, ok := errors.As(err); ok {
		if se.Code == errors.ErrCodeServiceAuth {
			return AuthError
		}
		switch se.Kind() {
		case errors.KindValidation:
			return UsageError
		case errors.KindService:
			return ServiceError
		case errors.KindInterpretation:
			return InterpretationError
		case errors.KindConfig:
			return ConfigError
		}
	}

	// cobra argument and flag errors are plain errors
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or scenario)"
	case ConfigError:
		return "Configuration error"
	case Interrupted:
		return "Interrupted"
	case AuthError:
		return "Authentication error"
	case ServiceError:
		return "Completion service error"
	case InterpretationError:
		return "Unusable completion or verdict"
	case NeedsUpdate:
		return "Script still needs updates"
	default:
		return "Unknown error"
	}
}
