package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSRFEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	e.GET("/form", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/submit", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func TestCSRF_TokenIssuedOnSafeMethod(t *testing.T) {
	t.Parallel()

	e := newCSRFEcho(Config{})

	req := httptest.NewRequest(http.MethodGet, "/form", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))

	var issued *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			issued = ck
		}
	}
	require.NotNil(t, issued)
	assert.NotEmpty(t, issued.Value)
}

func TestCSRF_PostWithoutTokenRejected(t *testing.T) {
	t.Parallel()

	e := newCSRFEcho(Config{})

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_PostWithMatchingTokenAccepted(t *testing.T) {
	t.Parallel()

	e := newCSRFEcho(Config{})

	get := httptest.NewRequest(http.MethodGet, "/form", nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, get)
	token := getRec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	post := httptest.NewRequest(http.MethodPost, "/submit", nil)
	post.Header.Set("Origin", "http://example.com")
	post.Header.Set("X-CSRF-Token", token)
	post.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, post)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_CrossOriginRejected(t *testing.T) {
	t.Parallel()

	e := newCSRFEcho(Config{})

	get := httptest.NewRequest(http.MethodGet, "/form", nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, get)
	token := getRec.Header().Get("X-CSRF-Token")

	post := httptest.NewRequest(http.MethodPost, "/submit", nil)
	post.Header.Set("Origin", "http://evil.example.net")
	post.Header.Set("X-CSRF-Token", token)
	post.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, post)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_SkipPaths(t *testing.T) {
	t.Parallel()

	e := newCSRFEcho(Config{SkipPaths: []string{"/submit"}})

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
