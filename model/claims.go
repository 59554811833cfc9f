package model

import "github.com/golang-jwt/jwt/v5"

// Token type values carried in the token_type claim. A refresh token must
// never be accepted where an access token is expected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AppClaims struct {
	UserID    int    `json:"user_id"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
