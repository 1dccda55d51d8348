package echo

import (
	"github.com/labstack/echo/v4"

	"github.com/outgoapp/outgo/config"
	"github.com/outgoapp/outgo/domain"
	"github.com/outgoapp/outgo/internal/federation"
	"github.com/outgoapp/outgo/services"
)

// API struct to hold dependencies.
type API struct {
	cfg      *config.ServerConfig
	caps     config.AuthCapabilities
	auth     *services.AuthService
	fed      *services.FederationService
	tokens   *services.TokenService
	users    domain.UserRepository
	expenses domain.ExpenseRepository
	// provider is nil when Google credentials are not configured; the
	// handshake endpoints then reject attempts early.
	provider federation.OAuth2Provider
}

// NewAPI initializes the HTTP API.
func NewAPI(
	cfg *config.ServerConfig,
	auth *services.AuthService,
	fed *services.FederationService,
	tokens *services.TokenService,
	users domain.UserRepository,
	expenses domain.ExpenseRepository,
	provider federation.OAuth2Provider,
) *API {
	return &API{
		cfg:      cfg,
		caps:     cfg.AuthCapabilities(),
		auth:     auth,
		fed:      fed,
		tokens:   tokens,
		users:    users,
		expenses: expenses,
		provider: provider,
	}
}

// RegisterRoutes registers all API routes.
func (a *API) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/google-auth-check", a.GoogleAuthCheckHandler)

	auth := api.Group("/auth")
	auth.POST("/register", a.RegisterHandler)
	auth.POST("/login", a.LoginHandler)
	auth.GET("/me", a.MeHandler, a.RequireAuth)
	auth.POST("/verify-token", a.VerifyTokenHandler)

	auth.GET("/google", a.GoogleStartHandler)
	auth.GET("/google/callback", a.GoogleCallbackHandler)
	auth.GET("/google/cancel", a.GoogleCancelHandler)

	expenses := api.Group("/expenses", a.RequireAuth)
	expenses.GET("", a.ListExpensesHandler)
	expenses.POST("/add", a.AddExpenseHandler)
	expenses.DELETE("/:id", a.DeleteExpenseHandler)
}
