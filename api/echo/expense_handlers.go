package echo

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/outgoapp/outgo/domain"
)

type addExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// ListExpensesHandler returns the authenticated user's expenses, newest
// first.
func (a *API) ListExpensesHandler(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
	}

	expenses, err := a.expenses.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to list expenses")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	return c.JSON(http.StatusOK, expenses)
}

// AddExpenseHandler records a new expense for the authenticated user.
func (a *API) AddExpenseHandler(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
	}

	var req addExpenseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	switch {
	case req.Description == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Description is required"})
	case req.Category == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Category is required"})
	case req.Amount <= 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Amount must be greater than zero"})
	}

	expense := &domain.Expense{
		UserID:      user.ID,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
	}
	if err := a.expenses.CreateExpense(c.Request().Context(), expense); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to create expense")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Expense added!"})
}

// DeleteExpenseHandler deletes one of the authenticated user's expenses.
// The ownership filter is part of the delete, so another user's expense
// id reads as not found.
func (a *API) DeleteExpenseHandler(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
	}

	id := c.Param("id")
	if err := a.expenses.DeleteOwned(c.Request().Context(), id, user.ID); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Expense not found or not authorized"})
		}
		log.Error().Err(err).Str("user_id", user.ID).Str("expense_id", id).Msg("failed to delete expense")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Expense deleted."})
}
