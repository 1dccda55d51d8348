package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/outgoapp/outgo/domain"
	"github.com/outgoapp/outgo/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

// RegisterHandler creates a new password-based account.
func (a *API) RegisterHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	user, token, err := a.auth.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": verr.Message})
		case errors.Is(err, domain.ErrDuplicateEmail):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email already registered"})
		case errors.Is(err, domain.ErrDuplicateUsername):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username already taken"})
		default:
			log.Error().Err(err).Msg("registration failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    user.Profile(),
	})
}

// LoginHandler authenticates an email/password pair.
func (a *API) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	user, token, err := a.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
		}
		log.Error().Err(err).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during login"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user.Profile(),
	})
}

// MeHandler returns the profile of the authenticated user.
func (a *API) MeHandler(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user.Profile()})
}

// VerifyTokenHandler checks a token supplied in the request body. Unlike
// RequireAuth it reports the outcome instead of guarding a resource.
func (a *API) VerifyTokenHandler(c echo.Context) error {
	var req verifyTokenRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "No token provided",
		})
	}

	userID, err := a.auth.VerifyToken(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"success": false,
				"message": "User not found",
			})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"success": false,
			"message": "Invalid token",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Token is valid",
		"userId":  userID,
	})
}

// GoogleAuthCheckHandler reports whether federated login is configured,
// so the client can probe before opening a popup.
func (a *API) GoogleAuthCheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, a.caps)
}
