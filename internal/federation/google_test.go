package federation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	googleOAuth2 "golang.org/x/oauth2/google"

	"github.com/outgoapp/outgo/internal/federation"
)

func TestGoogleProvider_FetchUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/oauth2/v3/userinfo") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"sub": "1234567890",
				"name": "Test User",
				"given_name": "Test",
				"family_name": "User",
				"picture": "https://example.com/avatar.jpg",
				"email": "test.user@example.com",
				"email_verified": true
			}`))
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	// Override the global endpoint for the test
	originalEndpoint := federation.GoogleUserInfoEndpoint
	federation.GoogleUserInfoEndpoint = server.URL + "/oauth2/v3/userinfo"
	defer func() { federation.GoogleUserInfoEndpoint = originalEndpoint }()

	provider, err := federation.NewGoogleProvider("test-client-id", "test-client-secret", "http://localhost:5000/api/auth/google/callback")
	require.NoError(t, err)

	dummyToken := &oauth2.Token{AccessToken: "dummy-access-token"}

	userInfo, err := provider.FetchUserInfo(context.Background(), dummyToken)
	require.NoError(t, err)
	require.NotNil(t, userInfo)

	assert.Equal(t, "1234567890", userInfo.ProviderUserID)
	assert.Equal(t, "test.user@example.com", userInfo.Email)
	assert.Equal(t, "Test User", userInfo.DisplayName)
	assert.Equal(t, "https://example.com/avatar.jpg", userInfo.PictureURL)
}

func TestGoogleProvider_FetchUserInfo_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	originalEndpoint := federation.GoogleUserInfoEndpoint
	federation.GoogleUserInfoEndpoint = server.URL
	defer func() { federation.GoogleUserInfoEndpoint = originalEndpoint }()

	provider, err := federation.NewGoogleProvider("id", "secret", "http://localhost/callback")
	require.NoError(t, err)
	dummyToken := &oauth2.Token{AccessToken: "dummy"}

	_, err = provider.FetchUserInfo(context.Background(), dummyToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch user info from Google: status 500")
}

func TestNewGoogleProvider_Misconfigured(t *testing.T) {
	_, err := federation.NewGoogleProvider("", "secret", "http://localhost/callback")
	assert.ErrorIs(t, err, federation.ErrProviderMisconfigured)

	_, err = federation.NewGoogleProvider("id", "", "http://localhost/callback")
	assert.ErrorIs(t, err, federation.ErrProviderMisconfigured)

	_, err = federation.NewGoogleProvider("id", "secret", "")
	assert.ErrorIs(t, err, federation.ErrProviderMisconfigured)
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	provider, err := federation.NewGoogleProvider("test-client-id", "test-client-secret", "http://localhost:5000/api/auth/google/callback")
	require.NoError(t, err)

	authURL := provider.AuthCodeURL("opaque-state", oauth2.SetAuthURLParam("prompt", "select_account"))
	assert.True(t, strings.HasPrefix(authURL, googleOAuth2.Endpoint.AuthURL))
	assert.Contains(t, authURL, "state=opaque-state")
	assert.Contains(t, authURL, "prompt=select_account")
	assert.Contains(t, authURL, "client_id=test-client-id")
}
