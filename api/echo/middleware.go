package echo

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/outgoapp/outgo/domain"
	"github.com/outgoapp/outgo/services"
)

const userContextKey = "auth_user"

// CurrentUser returns the authenticated user stored by RequireAuth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok
}

// RequireAuth guards routes behind a bearer token. The token is verified
// and the user it names is loaded fresh on every request, so a deleted
// account is rejected even while its token is still within its lifetime.
func (a *API) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"message": "No token, authorization denied",
			})
		}

		token := header
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			token = header[7:]
		}

		userID, err := a.tokens.Verify(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"message": "Token is not valid - " + tokenErrorReason(err),
			})
		}

		user, err := a.users.GetUserByID(c.Request().Context(), userID)
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				log.Error().Err(err).Str("user_id", userID).Msg("failed to load user for token")
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"message": "Token is not valid - user not found",
			})
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

func tokenErrorReason(err error) string {
	switch {
	case errors.Is(err, services.ErrTokenExpired):
		return "token has expired"
	default:
		return "signature is invalid"
	}
}
