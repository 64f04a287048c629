package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plashmag/editorial/internal/auth"
	"github.com/plashmag/editorial/internal/middleware/authmw"
	"github.com/plashmag/editorial/internal/users"
)

// DashboardHTTP serves the role-scoped JSON summaries behind the role gates.
// The guards have already admitted the request; handlers only fetch data.
type DashboardHTTP struct {
	Auth  *auth.Service
	Users *users.Service
}

func (h *DashboardHTTP) principal(c echo.Context) (echo.Map, error) {
	user, err := h.Auth.CurrentUser(c.Request().Context(), authmw.RequestFrom(c))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return echo.Map{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"sub_role":   user.SubRole,
		"last_login": user.LastLogin,
	}, nil
}

func (h *DashboardHTTP) Admin(c echo.Context) error {
	ctx := c.Request().Context()

	me, err := h.principal(c)
	if err != nil {
		return err
	}
	stats, err := h.Users.Stats(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"dashboard":     "admin",
		"principal":     me,
		"users_by_role": stats,
	})
}

func (h *DashboardHTTP) Athlete(c echo.Context) error {
	return h.roleDashboard(c, "athlete")
}

func (h *DashboardHTTP) Collaborator(c echo.Context) error {
	return h.roleDashboard(c, "collaborator")
}

func (h *DashboardHTTP) Partner(c echo.Context) error {
	return h.roleDashboard(c, "partner")
}

func (h *DashboardHTTP) roleDashboard(c echo.Context, name string) error {
	me, err := h.principal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"dashboard": name,
		"principal": me,
	})
}
