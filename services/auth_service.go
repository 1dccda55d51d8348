package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/outgoapp/outgo/domain"
)

// ErrInvalidCredentials is returned for an unknown email or a mismatched
// password; the two cases are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError carries an actionable message for a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthService implements password registration and login, plus the
// out-of-band token check used after OAuth flows.
type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens *TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, hasher PasswordHasher, tokens *TokenService) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// NormalizeEmail lower-cases and trims an email so lookups and the unique
// index agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local account and returns it with a freshly minted token.
// Duplicate email/username surface as domain.ErrDuplicateEmail/ErrDuplicateUsername.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if len(username) < 3 || len(username) > 20 {
		return nil, "", &ValidationError{Message: "Username must be between 3 and 20 characters"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", &ValidationError{Message: "Please enter a valid email"}
	}
	if len(password) < 6 {
		return nil, "", &ValidationError{Message: "Password must be at least 6 characters"}
	}

	// Pre-checks give precise messages; the unique indexes still back them up
	// under concurrent registration.
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, "", domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info().Str("userID", user.ID).Str("username", username).Msg("User registered")
	return user, token, nil
}

// Login verifies the credentials and returns the user with a new token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info().Str("userID", user.ID).Msg("User logged in")
	return user, token, nil
}

// VerifyToken validates a raw token out of band and confirms the embedded
// user still exists. Verification failures pass through from TokenService;
// a verified token for a deleted user returns domain.ErrUserNotFound.
func (s *AuthService) VerifyToken(ctx context.Context, tokenValue string) (string, error) {
	userID, err := s.tokens.Verify(tokenValue)
	if err != nil {
		return "", err
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return "", err
	}
	return userID, nil
}
