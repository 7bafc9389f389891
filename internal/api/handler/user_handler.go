package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omar-arnous/acquisitions/internal/api/metrics"
	"github.com/omar-arnous/acquisitions/internal/core/ports"
)

// UserHandler serves the /api/users routes. Every route runs behind the
// Authenticate middleware; per-record permissions are decided by the service.
type UserHandler struct {
	service ports.AccountService
	cookie  CookieConfig
}

func NewUserHandler(service ports.AccountService, cookie CookieConfig) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &UserHandler{service: service, cookie: cookie}
}

// List handles GET /api/users. Admin only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	users, err := h.service.ListUsers(c.Request().Context(), principal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, usersEnvelope{
		Message: "Successfully retrieved users",
		Users:   toUserResponses(users),
		Count:   len(users),
	})
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUser(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userEnvelope{Message: "Successfully retrieved user", User: toUserResponse(user)})
}

// Update handles PUT /api/users/:id with a partial body.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), principal, c.Param("id"), toUpdateInput(req))
	metrics.AccountMutationsTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userEnvelope{Message: "User updated successfully", User: toUserResponse(user)})
}

// Delete handles DELETE /api/users/:id. Deleting one's own account also
// clears the auth cookie.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	user, err := h.service.DeleteAccount(c.Request().Context(), principal, id)
	metrics.AccountMutationsTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	if principal.Is(id) {
		clearCookie(c, h.cookie)
	}
	return c.JSON(http.StatusOK, userEnvelope{Message: "User deleted successfully", User: toUserResponse(user)})
}
