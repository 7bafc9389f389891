package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/omar-arnous/acquisitions/internal/api/metrics"
	"github.com/omar-arnous/acquisitions/internal/core/domain"
	"github.com/omar-arnous/acquisitions/internal/core/ports"
)

// CookieConfig controls the auth cookie written on sign-up and sign-in.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AuthHandler serves the /api/auth routes.
type AuthHandler struct {
	service ports.AccountService
	cookie  CookieConfig
}

func NewAuthHandler(service ports.AccountService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{service: service, cookie: cookie}
}

// SignUp creates a new account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "User registration details"
// @Success      201   {object}  authEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues(string(res.User.Role)).Inc()

	h.setCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusCreated, authEnvelope{
		Message:   "User registered successfully",
		User:      toUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

// SignIn authenticates a user and returns a token, also set as a cookie.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Login credentials"
// @Success      200   {object}  authEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	h.setCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusOK, authEnvelope{
		Message:   "User signed in successfully",
		User:      toUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

// SignOut clears the auth cookie. Issued tokens stay valid until they expire.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	clearCookie(c, h.cookie)
	return c.JSON(http.StatusOK, messageResponse{Message: "User signed out successfully"})
}

func (h *AuthHandler) setCookie(c echo.Context, token string, expiresAt time.Time) {
	maxAge := int(h.cookie.TTL.Seconds())
	if maxAge <= 0 {
		maxAge = int(time.Until(expiresAt).Seconds())
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearCookie(c echo.Context, cfg CookieConfig) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
