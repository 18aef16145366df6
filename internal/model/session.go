package model

// Credentials is what the auth service hands back on login.
type Credentials struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Session is the signed-in user as held locally.
type Session struct {
	Token  string
	UserID string
	User   *Employee
}

// IsLoggedIn returns true when a credential is present.
func (s Session) IsLoggedIn() bool {
	return s.Token != ""
}
