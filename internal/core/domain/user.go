package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MinCredentialLength applies to both usernames and passwords.
const MinCredentialLength = 8

// User models an account able to authenticate.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	FaceReferenceID string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	Username string
	Role     string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Claims is the verified content of a session token.
type Claims struct {
	Subject   string
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Actor returns the identity carried by the claims.
func (c Claims) Actor() Actor {
	return Actor{Username: c.Subject, Role: c.Role}
}

// FaceMatch is the outcome of comparing a live sample with a reference.
type FaceMatch struct {
	Matched  bool
	Distance float64
}
