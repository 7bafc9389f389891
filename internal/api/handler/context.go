package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Authenticate middleware.
// Its absence means the route was mounted without the gate and is reported as
// unauthorized rather than served anonymously.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(c.Request().Context())
	if !ok || p.ID == "" {
		return domain.Principal{}, domain.NewError(domain.KindUnauthorized, "authentication required")
	}
	return p, nil
}
