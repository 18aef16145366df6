// Package model defines the domain models for aircare.
package model

// Model is the interface that all locally stored models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// Local storage keys. Names match what the web client kept in localStorage so
// an exported store stays readable by both.
const (
	KeyToken       = "token"
	KeyUserID      = "userId"
	KeyUser        = "user"
	KeyEventToShow = "eventIdToShow"
	PrefixNotified = "notifiedEvent_"
)

// Employee roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
