package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	googleOAuth2 "golang.org/x/oauth2/google"
)

// GoogleUserInfoEndpoint is a variable so tests can point it at a local server.
var GoogleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleProvider implements the OAuth2Provider interface for Google.
type GoogleProvider struct {
	conf *oauth2.Config
}

// NewGoogleProvider creates a new GoogleProvider. The callbackURL must match
// exactly the redirect URI registered with Google for this client.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) (*GoogleProvider, error) {
	if clientID == "" || clientSecret == "" || callbackURL == "" {
		return nil, ErrProviderMisconfigured
	}
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     googleOAuth2.Endpoint,
		},
	}, nil
}

func (g *GoogleProvider) Name() string {
	return "google"
}

// AuthCodeURL builds the Google authorization URL carrying state plus any
// prompt-control options mapped from the handshake start request.
func (g *GoogleProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return g.conf.AuthCodeURL(state, opts...)
}

func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeCodeFailed, err)
	}
	return token, nil
}

// FetchUserInfo retrieves the signed-in user's profile from Google's userinfo endpoint.
func (g *GoogleProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*ExternalUserInfo, error) {
	client := g.conf.Client(ctx, token)
	resp, err := client.Get(GoogleUserInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from Google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch user info from Google: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var rawUserInfo struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Google user info response body: %w", err)
	}
	if err := json.Unmarshal(rawBody, &rawUserInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Google user info: %w", err)
	}

	displayName := rawUserInfo.Name
	if displayName == "" {
		displayName = rawUserInfo.GivenName + rawUserInfo.FamilyName
	}

	return &ExternalUserInfo{
		ProviderUserID: rawUserInfo.Sub,
		Email:          rawUserInfo.Email,
		DisplayName:    displayName,
		PictureURL:     rawUserInfo.Picture,
	}, nil
}

// Ensure GoogleProvider implements OAuth2Provider.
var _ OAuth2Provider = (*GoogleProvider)(nil)
