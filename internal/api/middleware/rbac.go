package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/omar-arnous/acquisitions/internal/api/metrics"
	"github.com/omar-arnous/acquisitions/internal/core/domain"
	"github.com/omar-arnous/acquisitions/internal/core/policy"
)

// RequireRole rejects requests whose principal does not hold role.
// It must run after Authenticate.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var principal *domain.Principal
			if p, ok := PrincipalFrom(c); ok {
				principal = &p
			}
			if err := policy.RequireRole(principal, role); err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(domain.KindOf(err).String()).Inc()
				return err
			}
			return next(c)
		}
	}
}
