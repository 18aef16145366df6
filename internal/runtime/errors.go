package runtime

import (
	"errors"
	"strings"

	aerrors "github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/output"
)

// ErrDatabaseLocked is returned when another aircare process holds the
// local database.
var ErrDatabaseLocked = errors.New("local database is in use by another aircare process")

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitUnavailable = 3
)

// WrapOpenError turns badger's directory lock failure into a user error.
// Other errors are returned unchanged.
func WrapOpenError(err error, path string) error {
	if err == nil {
		return nil
	}
	if IsLockError(err) {
		return &aerrors.UserError{
			Message:    ErrDatabaseLocked.Error() + " (" + path + ")",
			Suggestion: "Stop 'aircare watch' in the other terminal, or set AIRCARE_DATABASE to another directory.",
			Field:      "database",
		}
	}
	return aerrors.NewSystemErrorWithOp("open", "could not open local database", err)
}

// IsLockError checks if an error is badger's directory lock failure.
func IsLockError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseLocked) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

// FormatError formats an error with its suggestion, by category.
func FormatError(err error) string {
	return aerrors.FormatByCategory(err)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch aerrors.Classify(err) {
	case aerrors.CategoryUser:
		return ExitUsage
	case aerrors.CategoryRecoverable:
		return ExitUnavailable
	default:
		return ExitError
	}
}

// NewErrorResponse builds the JSON error body for err.
func NewErrorResponse(err error) *output.ErrorResponse {
	return &output.ErrorResponse{
		Status:     "error",
		Error:      err.Error(),
		Suggestion: aerrors.GetSuggestion(err),
	}
}
