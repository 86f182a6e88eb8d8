package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	// RoleAdmin may reset the ledgers.
	RoleAdmin Role = "admin"
)

// Claims is the validated content of an admin token.
type Claims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

type adminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}
