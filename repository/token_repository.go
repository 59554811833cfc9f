// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ITokenRepository is the revocation ledger for refresh tokens. Once a
// token identifier is recorded it stays revoked for the token's lifetime.
type ITokenRepository interface {
	Revoke(token *model.RevokedToken) error
	IsRevoked(jti string) (bool, error)
}

// TokenRepository implements ITokenRepository. Postgres is the durable
// source of truth; a Redis entry with the token's remaining lifetime serves
// as a fast path so the hot refresh/verify loop usually skips the database.
type TokenRepository struct {
	DB    *sql.DB
	Cache ICacheClient
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB, cache ICacheClient) *TokenRepository {
	return &TokenRepository{DB: db, Cache: cache}
}

func cacheKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// Revoke inserts the token identifier into the ledger. The insert is
// ON CONFLICT DO NOTHING so revoking an already-revoked token is a safe
// no-op, including under concurrent calls for the same identifier.
func (r *TokenRepository) Revoke(token *model.RevokedToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"jti":     token.JTI,
		"user_id": token.UserID,
	})
	log.Info("Executing query to revoke refresh token")

	query := `INSERT INTO revoked_tokens (jti, user_id, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING`
	if _, err := r.DB.Exec(query, token.JTI, token.UserID, token.ExpiresAt); err != nil {
		log.WithError(err).Error("Failed to execute revoke token query")
		return err
	}

	if r.Cache != nil {
		ttl := time.Until(token.ExpiresAt)
		if ttl > 0 {
			// Cache write failures are tolerable; Postgres stays authoritative.
			if err := r.Cache.Set(context.Background(), cacheKey(token.JTI), "1", ttl).Err(); err != nil {
				log.WithError(err).Warn("Failed to cache revoked token")
			}
		}
	}
	return nil
}

// IsRevoked reports whether the token identifier is present in the ledger,
// consulting the cache before falling back to Postgres.
func (r *TokenRepository) IsRevoked(jti string) (bool, error) {
	if r.Cache != nil {
		_, err := r.Cache.Get(context.Background(), cacheKey(jti)).Result()
		if err == nil {
			return true, nil
		}
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("jti", jti).Warn("Cache lookup for revoked token failed")
		}
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`
	if err := r.DB.QueryRow(query, jti).Scan(&exists); err != nil {
		logger.Log.WithError(err).WithField("jti", jti).Error("Failed to execute revoked token lookup")
		return false, err
	}
	return exists, nil
}
