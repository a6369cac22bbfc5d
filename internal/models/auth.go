package models

import "github.com/golang-jwt/jwt/v5"

// Role names used by the host identity provider.
const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
	RoleAdmin      = "admin"
)

// Claims are the JWT claims issued by the host LMS and accepted at the API
// boundary.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
