package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Transport-level names and lifetimes shared with the HTTP layer.
const (
	SessionCookieName  = "plash_session"
	RememberCookieName = "plash_remember"

	SessionIdleTimeout = 2 * time.Hour
	RememberTokenTTL   = 30 * 24 * time.Hour
)

// CookieWriter is how the service instructs the transport layer to persist or
// drop the remember cookie. The cookie must be HTTP-only and site-wide.
type CookieWriter interface {
	SetRememberCookie(value string, expiresAt time.Time)
	ClearRememberCookie()
}

// Request carries the per-request transport state the service needs: the
// opaque session id, the remember token presented by the browser (empty when
// absent), and a writer for cookie side effects. It replaces the ambient
// superglobal state of the original.
type Request struct {
	SessionID     string
	RememberToken string
	RemoteIP      string
	Cookies       CookieWriter
}

// NewToken returns a 64-hex-char token from 32 random bytes.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
