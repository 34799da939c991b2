package models

// UserProfile is the user record persisted under the "user" storage key.
type UserProfile struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Genres []string `json:"genres,omitempty"`
}

// Session is the authentication state owned by the store.
//
// IsAuthenticated is true exactly when Token is non-empty.
type Session struct {
	Token           string
	User            *UserProfile
	IsAuthenticated bool
}

// NewSession builds a Session keeping the IsAuthenticated invariant.
func NewSession(token string, user *UserProfile) Session {
	return Session{Token: token, User: user, IsAuthenticated: token != ""}
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Genres   []string `json:"genres"`
}

// AuthResult is the decoded login/register response.
type AuthResult struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user,omitempty"`
}
