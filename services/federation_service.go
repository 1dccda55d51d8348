package services

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/outgoapp/outgo/domain"
	"github.com/outgoapp/outgo/internal/federation"
)

// FederationService resolves an external provider profile to exactly one
// local user per handshake: reuse by provider id, link by email, or create.
// The token is minted only after resolution fully succeeds, so a failed
// attempt commits neither a user nor a token.
type FederationService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens *TokenService
}

// NewFederationService creates a new FederationService.
func NewFederationService(users domain.UserRepository, hasher PasswordHasher, tokens *TokenService) *FederationService {
	return &FederationService{users: users, hasher: hasher, tokens: tokens}
}

// CompleteLogin runs create-or-link for the provider profile and mints a
// bearer token for the resolved user.
func (s *FederationService) CompleteLogin(ctx context.Context, info *federation.ExternalUserInfo) (*domain.User, string, error) {
	user, err := s.resolveUser(ctx, info)
	if err != nil {
		// Two concurrent first-time handshakes for the same email can race on
		// the unique index; whichever loses re-resolves once and finds the
		// winner's record.
		if isDuplicate(err) {
			log.Warn().Str("email", info.Email).Msg("Duplicate identity during federated resolution, retrying once")
			user, err = s.resolveUser(ctx, info)
		}
		if err != nil {
			return nil, "", err
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// resolveUser executes exactly one of the three resolution branches.
func (s *FederationService) resolveUser(ctx context.Context, info *federation.ExternalUserInfo) (*domain.User, error) {
	if info.ProviderUserID == "" || info.Email == "" {
		return nil, errors.New("provider profile is missing subject id or email")
	}

	// 1. Already linked: reuse as-is, even when the provider display name drifted.
	user, err := s.users.GetUserByGoogleID(ctx, info.ProviderUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	// 2. Same email: link the external identity to the existing account.
	email := NormalizeEmail(info.Email)
	user, err = s.users.GetUserByEmail(ctx, email)
	if err == nil {
		user.GoogleID = info.ProviderUserID
		if user.ProfilePicture == "" && info.PictureURL != "" {
			user.ProfilePicture = info.PictureURL
		}
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		log.Info().Str("userID", user.ID).Msg("Linked Google identity to existing account")
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	// 3. Brand new: create an account with a derived username and an unusable
	// random password hashed through the normal path.
	password, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	user = &domain.User{
		Username:       deriveUsername(info.DisplayName, email),
		Email:          email,
		PasswordHash:   hash,
		GoogleID:       info.ProviderUserID,
		ProfilePicture: info.PictureURL,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("userID", user.ID).Str("username", user.Username).Msg("Created account from Google profile")
	return user, nil
}

// deriveUsername strips whitespace from the display name, lower-cases it and
// appends a random disambiguator so repeated handshakes with the same display
// name do not collide.
func deriveUsername(displayName, email string) string {
	base := strings.ToLower(strings.Join(strings.Fields(displayName), ""))
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
		base = strings.ToLower(base)
	}
	return fmt.Sprintf("%s%d", base, rand.IntN(1000))
}

func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := cryptorand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate placeholder password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, domain.ErrDuplicateEmail) ||
		errors.Is(err, domain.ErrDuplicateUsername) ||
		errors.Is(err, domain.ErrDuplicateIdentity)
}
