package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims arbor cares about. The subject is the user id;
// Role "admin" grants unconditional read and mutate rights.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// IsAdmin reports whether the token carries the administrative role.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}
