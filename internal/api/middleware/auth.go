package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/omar-arnous/acquisitions/internal/api/metrics"
	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

// principalKey is the echo.Context key holding the authenticated principal.
const principalKey = "principal"

// TokenVerifier turns a raw token into a principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

var errTokenRequired = domain.NewError(domain.KindUnauthorized, "token required")

const msgTokenInvalid = "invalid or expired token"

// ExtractToken returns the raw token carried by the request. The cookie named
// cookieName wins over an "Authorization: Bearer" header.
func ExtractToken(c echo.Context, cookieName string) (string, bool) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authenticate verifies the request token and injects the principal into both
// the echo.Context and the request context.
func Authenticate(tokens TokenVerifier, cookieName string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := ExtractToken(c, cookieName)
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				return errTokenRequired
			}

			principal, err := tokens.Verify(raw)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
				return domain.WrapError(domain.KindUnauthorized, msgTokenInvalid, err)
			}

			c.Set(principalKey, principal)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), principal)))

			return next(c)
		}
	}
}

// PrincipalFrom returns the principal set by Authenticate.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
