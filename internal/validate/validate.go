// Package validate provides input validation helpers for the aircare CLI.
package validate

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/manav03panchal/aircare/internal/errors"
)

const (
	// MaxCodeLength is the maximum length for an AC unit code or username.
	MaxCodeLength = 32
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
	// MaxNameLength is the maximum length for a unit or person name.
	MaxNameLength = 128
	// MaxSummaryLength is the maximum length for an event summary.
	MaxSummaryLength = 4096
	// MaxAge bounds the age accepted at registration.
	MaxAge = 120
)

// codeRegex validates unit codes and usernames (alphanumeric, dashes, underscores, periods).
var codeRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// StorageID validates an id assigned by the maintenance server.
func StorageID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewUserError(field+" cannot be empty", "Provide the id shown by 'aircare events list'")
	}
	if !primitive.IsValidObjectID(id) {
		return errors.NewUserErrorWithField(field, id,
			"Invalid id format",
			"Ids are 24 hexadecimal characters, as shown in list output")
	}
	return nil
}

// ACCode validates the short code staff type for an AC unit.
func ACCode(code string) error {
	if code == "" {
		return errors.NewUserError("Unit code cannot be empty", "Provide a code like 'AC-101'")
	}
	if len(code) > MaxCodeLength {
		return errors.NewUserErrorWithField("code", code,
			"Unit code too long",
			"Unit codes must be 32 characters or fewer")
	}
	if !codeRegex.MatchString(code) {
		return errors.NewUserErrorWithField("code", code,
			"Invalid unit code",
			"Unit codes must start with a letter or number and contain only letters, numbers, dashes, underscores, or periods")
	}
	return nil
}

// Username validates a login name.
func Username(name string) error {
	if name == "" {
		return errors.NewUserError("Username cannot be empty", "Provide a username")
	}
	if len(name) > MaxCodeLength || !codeRegex.MatchString(name) {
		return errors.NewUserErrorWithField("username", name,
			"Invalid username",
			"Usernames are up to 32 letters, numbers, dashes, underscores, or periods")
	}
	return nil
}

// Name validates a unit name or a person's first or last name.
func Name(field, name string) error {
	if err := NonEmpty(field, name); err != nil {
		return err
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errors.NewUserErrorWithField(field, name,
			field+" too long",
			"Names must be 128 characters or fewer")
	}
	return nil
}

// Summary validates an event summary.
func Summary(summary string) error {
	if utf8.RuneCountInString(summary) > MaxSummaryLength {
		return errors.NewUserError(
			"Summary too long",
			"Summaries must be 4096 characters or fewer")
	}
	return nil
}

// Email validates an email address.
func Email(addr string) error {
	if addr == "" {
		return errors.NewUserError("Email cannot be empty", "Provide an email address")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return errors.NewUserErrorWithField("email", addr,
			"Invalid email address",
			"Use a plain address like 'ana@example.com'")
	}
	return nil
}

// Age validates a registration age.
func Age(age int) error {
	return InRange("age", age, 1, MaxAge)
}

// URL validates a URL for use as a webhook endpoint.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// (or http:// for localhost)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://example.com/webhook")
	}

	isLocalhost := hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"

	if parsed.Scheme == "http" && !isLocalhost {
		return errors.NewUserErrorWithField("url", rawURL,
			"HTTP not allowed for external URLs",
			"Use https://. HTTP is only allowed for localhost.")
	}

	if !isLocalhost {
		return checkInternalIP(hostname)
	}
	return nil
}

// ServerURL validates the maintenance server base URL. Unlike webhook URLs,
// private addresses are expected here.
func ServerURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
		return errors.NewUserErrorWithField("base_url", rawURL,
			"Invalid server URL",
			"Use a URL like 'http://localhost:8080'")
	}
	return nil
}

// checkInternalIP rejects hostnames that are, or resolve to, internal IPs.
func checkInternalIP(hostname string) error {
	if ip := net.ParseIP(hostname); ip != nil {
		if isInternalIP(ip) {
			return errors.NewUserErrorWithField("url", hostname,
				"Internal IP addresses not allowed",
				"Webhook URLs must point to external services")
		}
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// Unresolvable now; delivery will fail and be recorded later.
		return nil
	}

	for _, ip := range ips {
		if isInternalIP(ip) {
			return errors.NewUserErrorWithField("url", hostname,
				"Hostname resolves to internal IP",
				"Webhook URLs must point to external services")
		}
	}
	return nil
}

var privateNetworks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"fc00::/7",
	"fe80::/10",
	"::1/128",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, network)
	}
	return nets
}

// isInternalIP checks if an IP is in a private or loopback range.
func isInternalIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// NonEmpty validates that a string is not blank.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewUserError(
			field+" cannot be empty",
			"Provide a value for "+field)
	}
	return nil
}

// InRange validates that an integer is within [min, max].
func InRange(field string, value, min, max int) error {
	if value < min || value > max {
		return errors.NewUserErrorWithField(field, fmt.Sprint(value),
			"Value out of range",
			fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return nil
}
