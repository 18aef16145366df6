package errors

import (
	"errors"
	"net/http"
	"syscall"
)

// Category represents the type of error for display and handling purposes.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser indicates an error the user can fix (bad input, wrong state).
	CategoryUser
	// CategorySystem indicates a system-level error (disk full, server fault).
	CategorySystem
	// CategoryRecoverable indicates an error that may clear on retry.
	CategoryRecoverable
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategorySystem:
		return "system"
	case CategoryRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	if IsUserError(err) || IsValidationError(err) || IsNotFoundError(err) ||
		IsPreconditionError(err) || errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrForbidden) {
		return CategoryUser
	}

	if ge, ok := AsGatewayError(err); ok {
		switch {
		case ge.Temporary():
			return CategoryRecoverable
		case ge.Status == http.StatusUnauthorized || ge.Status == http.StatusForbidden:
			return CategoryUser
		case ge.Status >= 400 && ge.Status < 500:
			return CategoryUser
		default:
			return CategorySystem
		}
	}

	if IsSystemError(err) || isSystemLevel(err) {
		return CategorySystem
	}
	if IsRecoverableError(err) || isRecoverablePattern(err) {
		return CategoryRecoverable
	}

	return CategoryUnknown
}

// isSystemLevel checks if an error is a system-level error.
func isSystemLevel(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC, syscall.EACCES, syscall.EPERM, syscall.EIO, syscall.EROFS:
			return true
		}
	}

	return errors.Is(err, ErrDiskFull) || errors.Is(err, ErrPermissionDenied)
}

// isRecoverablePattern checks if an error matches recoverable patterns.
func isRecoverablePattern(err error) bool {
	if errors.Is(err, ErrNetworkUnavailable) || errors.Is(err, ErrTimeout) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.EINTR, syscall.ETIMEDOUT, syscall.ECONNREFUSED, syscall.ECONNRESET:
			return true
		}
	}

	return false
}

// FormatByCategory returns a user-appropriate error message based on category.
func FormatByCategory(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	suggestion := GetSuggestion(err)

	switch Classify(err) {
	case CategoryUser:
		if suggestion != "" {
			return msg + "\n\nTry: " + suggestion
		}
		return msg

	case CategorySystem:
		if suggestion != "" {
			return "System error: " + msg + "\n\n" + suggestion
		}
		return "System error: " + msg

	case CategoryRecoverable:
		if suggestion != "" {
			return msg + "\n\n" + suggestion
		}
		return msg + " (try again shortly)"

	default:
		return msg
	}
}
