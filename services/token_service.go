package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the fixed validity window of every issued bearer token.
// Tokens are stateless: invalidation happens only by expiry or by the client
// discarding its copy.
const TokenLifetime = 7 * 24 * time.Hour

var (
	// ErrInvalidSignature covers malformed tokens and tokens signed with a
	// different secret. Callers must treat any Verify failure as unauthenticated.
	ErrInvalidSignature = errors.New("token signature is invalid")
	// ErrTokenExpired is returned for tokens past their expiry, regardless of
	// signature validity.
	ErrTokenExpired = errors.New("token has expired")
)

// tokenClaims carries the embedded user id alongside the registered iat/exp claims.
type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited bearer tokens. The
// signing secret is process-wide configuration, read-only after startup.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService. An empty secret is a caller bug:
// config.Validate rejects the misconfiguration before this point.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue produces a signed token embedding userID, expiring TokenLifetime from now.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and expiry of a token and returns the embedded
// user id. It fails with ErrTokenExpired or ErrInvalidSignature; there is no
// soft-fail mode.
func (s *TokenService) Verify(tokenValue string) (string, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenValue, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidSignature
	}
	if claims.UserID == "" {
		return "", ErrInvalidSignature
	}
	return claims.UserID, nil
}
