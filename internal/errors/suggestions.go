package errors

import (
	"errors"
	"net/http"
)

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrNotLoggedIn:        "Sign in with 'aircare login'.",
	ErrForbidden:          "Ask an administrator to run this, or sign in with an admin account.",
	ErrInvalidClockTime:   "Use a zero-padded 24-hour time such as '09:00' or '17:30'.",
	ErrInvalidDate:        "Try '2026-03-14T09:00', '2026-03-14', or 'next friday at 9am'.",
	ErrUnknownACUnit:      "Use 'aircare ac list' to see unit codes.",
	ErrNoEventSelected:    "Open the event first with 'aircare events show <id>'.",
	ErrWebhookNotFound:    "Use 'aircare webhook list' to see configured webhooks.",
	ErrWebhookExists:      "Remove it first, or pick another name.",
	ErrInvalidURL:         "Provide a valid URL starting with https:// (or http:// for localhost).",
	ErrDiskFull:           "Free up disk space and try again.",
	ErrNetworkUnavailable: "Check that the maintenance server is reachable (see 'aircare config').",
	ErrTimeout:            "The server took too long to answer. Try again or raise AIRCARE_HTTP_TIMEOUT.",
	ErrPermissionDenied:   "Check file permissions in your data directory (~/.local/share/aircare/).",
}

// GetSuggestion returns a suggestion for an error, if available.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	if IsNotFoundError(err) {
		return "The record may have been deleted. Refresh with 'aircare events list'."
	}

	if ge, ok := AsGatewayError(err); ok {
		switch {
		case ge.Status == 0:
			return Suggestions[ErrNetworkUnavailable]
		case ge.Status == http.StatusUnauthorized:
			return "Your session may have expired. Sign in again with 'aircare login'."
		case ge.Status == http.StatusForbidden:
			return Suggestions[ErrForbidden]
		}
	}

	return ""
}
