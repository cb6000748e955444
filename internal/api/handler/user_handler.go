package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/api/middleware"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// UserHandler handles HTTP requests for account operations. Validation,
// authentication and route-level authorization run as middleware before
// these handlers; see api.NewRouter for the chain of each route.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /users.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      CreateUserRequest  true  "Account details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	req, ok := middleware.Payload[CreateUserRequest](c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), caller, req.toInput())
	if err != nil {
		return err
	}

	metrics.AccountOperationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, user.Sanitize())
}

// List handles GET /users.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Account
// @Failure      401  {object}  errorResponse
// @Failure      403
// @Failure      500  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	metrics.AccountOperationsTotal.WithLabelValues("list").Inc()
	return c.JSON(http.StatusOK, toAccounts(users))
}

// Get handles GET /users/:id.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Failure      403
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.AccountOperationsTotal.WithLabelValues("read").Inc()
	return c.JSON(http.StatusOK, user.Sanitize())
}

// Update handles PATCH /users/:id.
//
// @Summary      Partially update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Account ID"
// @Param        body  body      UpdateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	req, ok := middleware.Payload[UpdateUserRequest](c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}

	metrics.AccountOperationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, user.Sanitize())
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete (archive) an account
// @Tags         users
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.AccountOperationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Restore handles POST /users/:id/restore.
//
// @Summary      Restore an archived account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Failure      403
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id}/restore [post]
func (h *UserHandler) Restore(c echo.Context) error {
	user, err := h.service.Restore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.AccountOperationsTotal.WithLabelValues("restore").Inc()
	return c.JSON(http.StatusOK, user.Sanitize())
}
