package model

import "strings"

// Employee is a staff or admin account.
type Employee struct {
	ID        string `json:"_id,omitempty"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Age       int    `json:"age,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	Role      string `json:"role,omitempty"`
}

// FullName returns "first last", trimmed.
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IsAdmin reports whether the employee holds the admin role.
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// Registration is a new account as posted to the users collection.
type Registration struct {
	Employee
	Password string `json:"password"`
}
