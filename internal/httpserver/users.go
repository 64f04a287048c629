package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/plashmag/editorial/internal/logging"
	"github.com/plashmag/editorial/internal/store"
	"github.com/plashmag/editorial/internal/users"
)

type UsersHTTP struct {
	Svc *users.Service
}

func validationResponse(c echo.Context, verr *users.ValidationError) error {
	status := http.StatusUnprocessableEntity
	if verr.Code == users.CodeNotFound {
		status = http.StatusNotFound
	}
	return c.JSON(status, echo.Map{
		"code":    verr.Code,
		"field":   verr.Field,
		"message": verr.Message,
	})
}

func (h *UsersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	filters := store.Filters{
		Role:   c.QueryParam("role"),
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	list, err := h.Svc.List(ctx, filters, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UsersHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_create")

	var req struct {
		Name     string   `json:"name" form:"name"`
		Email    string   `json:"email" form:"email"`
		Password string   `json:"password" form:"password"`
		Role     string   `json:"role" form:"role"`
		SubRole  string   `json:"sub_role" form:"sub_role"`
		Status   string   `json:"status" form:"status"`
		Badges   []string `json:"badges" form:"badges"`
		Bio      string   `json:"bio" form:"bio"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Create(ctx, users.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		SubRole:  req.SubRole,
		Status:   req.Status,
		Badges:   req.Badges,
		Bio:      req.Bio,
	})
	if err != nil {
		var verr *users.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}
		l.Error("create_failed", "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UsersHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_update")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Name     *string  `json:"name"`
		Email    *string  `json:"email"`
		Password *string  `json:"password"`
		Role     *string  `json:"role"`
		SubRole  *string  `json:"sub_role"`
		Status   *string  `json:"status"`
		Badges   []string `json:"badges"`
		Bio      *string  `json:"bio"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	err = h.Svc.Update(ctx, uint(id), users.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		SubRole:  req.SubRole,
		Status:   req.Status,
		Badges:   req.Badges,
		Bio:      req.Bio,
	})
	if err != nil {
		var verr *users.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}
		l.Error("update_failed", "user_id", id, "error", err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
}
