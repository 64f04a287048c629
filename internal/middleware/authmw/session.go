package authmw

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/plashmag/editorial/internal/auth"
)

const requestKey = "auth_request"

type cookieWriter struct {
	c echo.Context
}

func (w cookieWriter) SetRememberCookie(value string, expiresAt time.Time) {
	w.c.SetCookie(&http.Cookie{
		Name:     auth.RememberCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (w cookieWriter) ClearRememberCookie() {
	w.c.SetCookie(&http.Cookie{
		Name:     auth.RememberCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// SessionCookie issues the opaque session-id cookie on first contact and
// builds the per-request auth.Request from the transport state.
func SessionCookie() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sessionID string
			if ck, err := c.Cookie(auth.SessionCookieName); err == nil && ck.Value != "" {
				sessionID = ck.Value
			} else {
				sessionID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     auth.SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			var remember string
			if ck, err := c.Cookie(auth.RememberCookieName); err == nil {
				remember = ck.Value
			}

			c.Set(requestKey, &auth.Request{
				SessionID:     sessionID,
				RememberToken: remember,
				RemoteIP:      c.RealIP(),
				Cookies:       cookieWriter{c},
			})
			return next(c)
		}
	}
}

// RequestFrom returns the auth.Request built by SessionCookie.
func RequestFrom(c echo.Context) *auth.Request {
	if v, ok := c.Get(requestKey).(*auth.Request); ok {
		return v
	}
	// Routes registered without SessionCookie still get a usable, anonymous
	// request object.
	return &auth.Request{Cookies: cookieWriter{c}}
}
