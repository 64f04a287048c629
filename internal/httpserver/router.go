package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plashmag/editorial/internal/auth"
	"github.com/plashmag/editorial/internal/middleware/authmw"
)

type Deps struct {
	AuthSvc     *auth.Service
	AuthHandler *AuthHTTP
	UserHandler *UsersHTTP
	Dashboard   *DashboardHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(authmw.SessionCookie())

	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout)
	e.GET("/me", d.AuthHandler.Me, authmw.RequireAuth(d.AuthSvc))

	e.GET(authmw.ForbiddenPath, func(c echo.Context) error {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "access denied"})
	})

	admin := e.Group("/admin", authmw.RequireRole(d.AuthSvc, auth.RoleAdmin))
	admin.GET("", d.Dashboard.Admin)
	admin.GET("/users", d.UserHandler.List)
	admin.POST("/users", d.UserHandler.Create)
	admin.PATCH("/users/:id", d.UserHandler.Update)

	athlete := e.Group("/athlete", authmw.RequireRole(d.AuthSvc, auth.RoleAthlete))
	athlete.GET("", d.Dashboard.Athlete)

	collaborator := e.Group("/collaborator", authmw.RequireRole(d.AuthSvc, auth.RoleCollaborator))
	collaborator.GET("", d.Dashboard.Collaborator)

	partner := e.Group("/partner", authmw.RequireRole(d.AuthSvc, auth.RolePartner))
	partner.GET("", d.Dashboard.Partner)
}
