package echo

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/outgoapp/outgo/internal/handshake"
)

// GoogleStartHandler begins the popup handshake: it packs the caller's
// correlation id into the OAuth state parameter and redirects to the
// provider's consent screen.
func (a *API) GoogleStartHandler(c echo.Context) error {
	if !a.caps.FederatedLoginEnabled || a.provider == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"message": "Google authentication is not configured",
		})
	}

	unique := c.QueryParam("unique")
	if unique == "" {
		unique = uuid.NewString()
	}
	force := c.QueryParam("force_selection") == "true"

	state := handshake.State{
		ClientURL:      a.cfg.ClientURL,
		UniqueID:       unique,
		ForceSelection: force,
	}

	opts := handshake.StartOptions{
		Prompt:               c.QueryParam("prompt"),
		AccessType:           c.QueryParam("access_type"),
		IncludeGrantedScopes: c.QueryParam("include_granted_scopes"),
		AuthUser:             c.QueryParam("authuser"),
		ApprovalPrompt:       c.QueryParam("approval_prompt"),
		ForceSelection:       force,
	}
	// An empty login_hint is still forwarded; it clears any hint the
	// provider remembered for this browser.
	if c.QueryParams().Has("login_hint") {
		hint := c.QueryParam("login_hint")
		opts.LoginHint = &hint
	}

	authURL := a.provider.AuthCodeURL(state.Encode(), opts.AuthCodeOptions()...)
	log.Debug().Str("unique_id", unique).Bool("force_selection", force).Msg("starting google handshake")
	return c.Redirect(http.StatusFound, authURL)
}

// GoogleCallbackHandler completes the handshake. Provider errors and
// missing codes are routed to the cancel page so the opener always gets
// a terminal message; only internal failures surface as 500s.
func (a *API) GoogleCallbackHandler(c echo.Context) error {
	stateParam := c.QueryParam("state")
	code := c.QueryParam("code")

	if errParam := c.QueryParam("error"); errParam != "" || code == "" {
		log.Warn().Str("error", errParam).Msg("google handshake denied or aborted")
		cancelURL := "/api/auth/google/cancel"
		if stateParam != "" {
			cancelURL += "?state=" + url.QueryEscape(stateParam)
		}
		return c.Redirect(http.StatusFound, cancelURL)
	}

	if a.provider == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"message": "Google authentication is not configured",
		})
	}

	ctx := c.Request().Context()

	token, err := a.provider.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("code exchange failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Authentication failed"})
	}

	info, err := a.provider.FetchUserInfo(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("userinfo fetch failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Authentication failed"})
	}

	user, bearer, err := a.fed.CompleteLogin(ctx, info)
	if err != nil {
		log.Error().Err(err).Str("email", info.Email).Msg("federated login failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Authentication failed"})
	}

	clientURL := a.cfg.ClientURL
	forceSelection := false
	if state, err := handshake.DecodeState(stateParam); err == nil {
		if state.ClientURL != "" {
			clientURL = state.ClientURL
		}
		forceSelection = state.ForceSelection
	}

	log.Info().Str("user_id", user.ID).Msg("google handshake completed")
	return a.renderSuccessPage(c, clientURL, bearer, user.Profile(), forceSelection)
}

// GoogleCancelHandler renders the terminal page for a denied or
// abandoned handshake.
func (a *API) GoogleCancelHandler(c echo.Context) error {
	clientURL := a.cfg.ClientURL
	if state, err := handshake.DecodeState(c.QueryParam("state")); err == nil && state.ClientURL != "" {
		clientURL = state.ClientURL
	}
	return a.renderCancelPage(c, clientURL)
}
