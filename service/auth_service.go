package service

import (
	"errors"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for any login failure. The caller
	// must not learn whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrTokenExpired is returned when a token's expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken is returned for signature, format or claim failures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned when a refresh token is in the revocation ledger.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrMalformedToken is returned when input cannot be parsed as a signed
	// token at all, the one case revocation does not treat as a no-op.
	ErrMalformedToken = errors.New("malformed token")
)

// AuthService mints, verifies and revokes tokens, and owns credential
// verification. It is the only component with security-critical logic.
type AuthService struct {
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository

	jwtKey     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration

	// now is injected so tests can simulate clock advancement.
	now func() time.Time
}

// NewAuthService creates an AuthService configured from AppConfig.
func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository) *AuthService {
	cfg := config.AppConfig.JWT
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtKey:     []byte(cfg.SecretKey),
		accessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTTLHours) * time.Hour,
		leeway:     time.Duration(cfg.ClockSkewSeconds) * time.Second,
		now:        time.Now,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IssueTokenPair mints a signed access/refresh pair bound to the user.
// The mint is stateless: nothing is recorded until the refresh token is
// revoked.
func (s *AuthService) IssueTokenPair(user *model.User) (*model.TokenPair, error) {
	now := s.now()

	accessClaims := &model.AppClaims{
		UserID:    user.ID,
		IsStaff:   user.IsStaff,
		TokenType: model.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	refreshClaims := &model.AppClaims{
		UserID:    user.ID,
		TokenType: model.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			ID:        uuid.NewString(),
		},
	}

	access, err := s.signClaims(accessClaims)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signClaims(refreshClaims)
	if err != nil {
		return nil, err
	}

	return &model.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) signClaims(claims *model.AppClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", claims.UserID).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) parseClaims(tokenString string, opts ...jwt.ParserOption) (*model.AppClaims, error) {
	claims := &model.AppClaims{}

	baseOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	}
	baseOpts = append(baseOpts, opts...)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtKey, nil
	}, baseOpts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccessToken checks signature and expiry and resolves the claims.
// The revocation ledger is never consulted here: access tokens are too
// short-lived to be individually revocable.
func (s *AuthService) VerifyAccessToken(tokenString string) (*model.AppClaims, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != model.TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshAccessToken verifies a refresh token, checks the revocation ledger
// and rotates: the presented token's identifier is revoked and a fresh pair
// is minted, so a consumed refresh token cannot be replayed.
func (s *AuthService) RefreshAccessToken(refreshString string) (*model.TokenPair, error) {
	claims, err := s.parseClaims(refreshString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != model.TokenTypeRefresh || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.tokenRepo.IsRevoked(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.tokenRepo.Revoke(&model.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("Refresh token rotated")
	return s.IssueTokenPair(user)
}

// Revoke inserts the refresh token's identifier into the revocation ledger.
// Expiry is deliberately not validated: revoking an already-expired or
// already-revoked token is a harmless no-op and must succeed, so a logout
// never fails because of a double-click. Only input that cannot be parsed
// as a token signed by this server is rejected.
func (s *AuthService) Revoke(refreshString string) error {
	claims, err := s.parseClaims(refreshString, jwt.WithoutClaimsValidation())
	if err != nil {
		return ErrMalformedToken
	}
	if claims.TokenType != model.TokenTypeRefresh || claims.ID == "" || claims.ExpiresAt == nil {
		return ErrMalformedToken
	}

	return s.tokenRepo.Revoke(&model.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Login verifies credentials and issues a token pair. Unknown usernames and
// wrong passwords fail identically to prevent username enumeration.
func (s *AuthService) Login(username, password string) (*model.TokenPair, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	logger.Log.WithField("username", username).Info("User logged in")
	return s.IssueTokenPair(user)
}
