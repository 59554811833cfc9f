// file: model/token.go

package model

import "time"

// TokenPair is the access/refresh pair returned by login and token refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RevokedToken is an entry in the revocation ledger. Once a refresh token's
// identifier is recorded here it can never mint another access token.
type RevokedToken struct {
	JTI       string    `json:"jti"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	RevokedAt time.Time `json:"revoked_at"`
}
