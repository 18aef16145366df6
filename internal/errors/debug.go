package errors

import (
	"errors"
	"strings"
)

// Chain returns the full error chain as a slice of error messages.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}

// RootCause returns the deepest wrapped error in the chain.
func RootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

// FormatDebugError formats an error with its category and wrapped causes.
func FormatDebugError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(err.Error())
	sb.WriteString("\nCategory: ")
	sb.WriteString(Classify(err).String())
	sb.WriteString("\n")

	chain := Chain(err)
	if len(chain) > 1 {
		sb.WriteString("Caused by:\n")
		for _, msg := range chain[1:] {
			sb.WriteString("  - ")
			sb.WriteString(msg)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
