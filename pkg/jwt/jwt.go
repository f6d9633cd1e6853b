package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token has expired.
	ErrTokenExpired = errors.New("token is expired")
	// ErrInvalidToken is returned for malformed, tampered or wrong-type tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned when signing is attempted without a secret key.
	ErrMissingSecret = errors.New("jwt secret key is not configured")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom JWT claims structure.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Type     string `json:"typ"`
	jwtlib.RegisteredClaims
}

// TokenManager issues and validates access and refresh tokens.
type TokenManager interface {
	// GenerateAccessToken returns a signed short-lived token and its expiry.
	GenerateAccessToken(userID uint, username string, ttl time.Duration) (string, time.Time, error)
	// GenerateRefreshToken returns a signed long-lived token and its expiry.
	GenerateRefreshToken(userID uint, username string, ttl time.Duration) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// NewTokenManager creates a new TokenManager with the given secret key.
func NewTokenManager(secretKey string) TokenManager {
	return NewTokenManagerWithClock(secretKey, time.Now)
}

// NewTokenManagerWithClock creates a TokenManager that reads the current time from now.
func NewTokenManagerWithClock(secretKey string, now func() time.Time) TokenManager {
	if now == nil {
		now = time.Now
	}
	return &tokenManager{secretKey: []byte(secretKey), now: now}
}

type tokenManager struct {
	secretKey []byte
	now       func() time.Time
}

func (j *tokenManager) GenerateAccessToken(userID uint, username string, ttl time.Duration) (string, time.Time, error) {
	return j.sign(userID, username, TokenTypeAccess, ttl)
}

func (j *tokenManager) GenerateRefreshToken(userID uint, username string, ttl time.Duration) (string, time.Time, error) {
	return j.sign(userID, username, TokenTypeRefresh, ttl)
}

func (j *tokenManager) sign(userID uint, username, tokenType string, ttl time.Duration) (string, time.Time, error) {
	if len(j.secretKey) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	now := j.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		Type:     tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	// NumericDate drops sub-second precision; report the expiry the token carries.
	return signed, claims.ExpiresAt.Time, nil
}

// ValidateAccessToken parses the token and checks that it is an unexpired access token.
func (j *tokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken parses the token and checks that it is an unexpired refresh token.
func (j *tokenManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeRefresh)
}

func (j *tokenManager) validate(tokenString, tokenType string) (*Claims, error) {
	if len(j.secretKey) == 0 {
		return nil, ErrMissingSecret
	}
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		return j.secretKey, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(j.now),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, tokenType)
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}
