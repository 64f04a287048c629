package authmw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plashmag/editorial/internal/auth"
)

const (
	LoginPath     = "/login"
	ForbiddenPath = "/error/403"
)

// RequireAuth redirects anonymous requests to the login entry point and stops
// the chain. Store failures surface as request-level errors.
func RequireAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := RequestFrom(c)
			ok, err := svc.IsAuthenticated(c.Request().Context(), req)
			if err != nil {
				return err
			}
			if !ok {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}

// RequireRole applies RequireAuth semantics first, then gates on the role.
// An authenticated principal without permission is sent to the forbidden
// page.
func RequireRole(svc *auth.Service, required auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			req := RequestFrom(c)

			ok, err := svc.IsAuthenticated(ctx, req)
			if err != nil {
				return err
			}
			if !ok {
				return c.Redirect(http.StatusFound, LoginPath)
			}

			allowed, err := svc.HasPermission(ctx, req, required)
			if err != nil {
				return err
			}
			if !allowed {
				return c.Redirect(http.StatusFound, ForbiddenPath)
			}
			return next(c)
		}
	}
}
