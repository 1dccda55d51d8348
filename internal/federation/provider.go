package federation

import (
	"context"

	"golang.org/x/oauth2"
)

// ExternalUserInfo holds standardized user information retrieved from an external OAuth2 provider.
type ExternalUserInfo struct {
	ProviderUserID string // Unique ID of the user within the external provider (e.g., Google's 'sub')
	Email          string
	DisplayName    string
	PictureURL     string
}

// OAuth2Provider is the narrow interface the handshake controller depends on.
// Implementations handle provider-specific details; tests substitute a fake so
// no handshake test touches the network.
type OAuth2Provider interface {
	// Name returns the unique identifier for the provider (e.g., "google").
	Name() string

	// AuthCodeURL builds the authorization URL the popup should be redirected
	// to. The state parameter must round-trip unchanged through the provider.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for an OAuth2 token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchUserInfo uses an access token to retrieve user information from the
	// provider, returning a standardized ExternalUserInfo.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*ExternalUserInfo, error)
}
