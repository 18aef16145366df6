package logging

import (
	"strings"
)

const (
	// MaskChar is the character used for masking.
	MaskChar = "*"
	// URLMaskLength is how many characters to show before masking URLs.
	URLMaskLength = 30
	// DefaultMaskLength is how many mask characters to show.
	DefaultMaskLength = 3
)

// sensitiveKeywords mark attribute keys whose values are credentials.
var sensitiveKeywords = []string{
	"token",
	"password",
	"secret",
	"authorization",
	"bearer",
	"credential",
}

// IsSensitiveField checks if a field name indicates sensitive data.
func IsSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// MaskValue masks a sensitive value completely.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat(MaskChar, min(len(value), 8))
}

// MaskToken shows only the first few characters of a bearer token.
func MaskToken(token string) string {
	const show = 6
	if len(token) <= show {
		return strings.Repeat(MaskChar, len(token))
	}
	return token[:show] + strings.Repeat(MaskChar, DefaultMaskLength)
}

// MaskURL masks a URL, showing only the first URLMaskLength characters.
// Local URLs are returned as-is.
func MaskURL(url string) string {
	if strings.Contains(url, "localhost") || strings.Contains(url, "127.0.0.1") {
		return url
	}
	if len(url) <= URLMaskLength {
		return url
	}
	return url[:URLMaskLength] + strings.Repeat(MaskChar, DefaultMaskLength)
}
