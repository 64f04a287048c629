package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/plashmag/editorial/internal/activity"
	"github.com/plashmag/editorial/internal/hash"
	"github.com/plashmag/editorial/internal/logging"
	"github.com/plashmag/editorial/internal/models"
	"github.com/plashmag/editorial/internal/session"
	"github.com/plashmag/editorial/internal/store"
)

// ErrInvalidCredentials is the single failure surfaced for an unknown email,
// a wrong password, and an inactive account alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserStore interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	FindActiveByID(ctx context.Context, id uint) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

type TokenStore interface {
	Upsert(ctx context.Context, userID uint, token string, expiresAt time.Time) error
	FindUserByToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID uint) error
}

// Service decides who the authenticated principal of a request is and whether
// that principal may access a role-gated resource. All collaborators are
// injected; the clock is injectable for the timeout tests.
type Service struct {
	Users    UserStore
	Tokens   TokenStore
	Sessions session.Store
	Activity *activity.Recorder
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Authenticate checks credentials against the active-user record for the
// normalized email. On success it stamps last-login and returns the full
// record; every failure mode returns ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.Users.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error("user lookup failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		l.Error("last-login update failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	user.LastLogin = &now

	s.Activity.Record(ctx, activity.Event{
		UserID:     user.ID,
		Action:     "login",
		EntityType: "user",
		EntityID:   user.ID,
		Details:    "user logged in",
	})

	return user, nil
}

// StartSession writes a fresh session for the request's browser context.
// With remember set it also issues a new 30-day token, replacing any previous
// one for the user, and has the transport persist it as an HTTP-only cookie.
func (s *Service) StartSession(ctx context.Context, req *Request, user *models.User, remember bool) error {
	now := s.now()
	s.Sessions.Put(req.SessionID, session.Data{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    user.Role,
		Name:    user.Name,
		LoginAt: now,
	})

	if remember {
		token, err := NewToken()
		if err != nil {
			return err
		}
		expiry := now.Add(RememberTokenTTL)
		if err := s.Tokens.Upsert(ctx, user.ID, token, expiry); err != nil {
			return err
		}
		req.Cookies.SetRememberCookie(token, expiry)
		req.RememberToken = token
	}

	return nil
}

// IsAuthenticated resolves the principal in order: fresh session, then
// remember-token redemption, then anonymous. The error return carries
// persistence failures only; invalid sessions and tokens resolve silently
// to false.
func (s *Service) IsAuthenticated(ctx context.Context, req *Request) (bool, error) {
	now := s.now()

	if sess, ok := s.Sessions.Get(req.SessionID); ok {
		if now.Sub(sess.LoginAt) < SessionIdleTimeout {
			return true, nil
		}
		// Stale state must read as absent. The remember token is left in
		// place: redemption below decides whether the principal stays
		// signed in (see DESIGN.md).
		s.Sessions.Delete(req.SessionID)
	}

	if req.RememberToken != "" {
		user, err := s.Tokens.FindUserByToken(ctx, req.RememberToken, now)
		switch {
		case err == nil:
			// Silent re-login. Re-issuing with remember=true slides the
			// 30-day window on every redemption.
			if err := s.StartSession(ctx, req, user, true); err != nil {
				return false, err
			}
			return true, nil
		case errors.Is(err, store.ErrNotFound):
			// Expired or orphaned row; cleanup is best-effort.
			if derr := s.Tokens.DeleteByToken(ctx, req.RememberToken); derr != nil {
				logging.FromContext(ctx).Warn("remember-token cleanup failed", "error", derr)
			}
			req.Cookies.ClearRememberCookie()
		default:
			return false, err
		}
	}

	return false, nil
}

// CurrentUser re-fetches the active user row behind the session so that an
// account deactivated after login stops resolving even while its session
// state still exists. Returns nil without error when unauthenticated.
func (s *Service) CurrentUser(ctx context.Context, req *Request) (*models.User, error) {
	ok, err := s.IsAuthenticated(ctx, req)
	if err != nil || !ok {
		return nil, err
	}

	sess, ok := s.Sessions.Get(req.SessionID)
	if !ok {
		return nil, nil
	}

	user, err := s.Users.FindActiveByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// DestroySession revokes the user's remember tokens when the session still
// identifies one, drops the session state, and clears the remember cookie.
// Safe to call with no session at all.
func (s *Service) DestroySession(ctx context.Context, req *Request) error {
	if sess, ok := s.Sessions.Get(req.SessionID); ok {
		if err := s.Tokens.DeleteForUser(ctx, sess.UserID); err != nil {
			return err
		}
	}

	s.Sessions.Delete(req.SessionID)
	req.Cookies.ClearRememberCookie()
	req.RememberToken = ""
	return nil
}

// HasPermission resolves the effective role from the override when given,
// otherwise from the current user, and applies Role.Permits.
func (s *Service) HasPermission(ctx context.Context, req *Request, required Role, override ...Role) (bool, error) {
	var role Role
	if len(override) > 0 {
		role = override[0]
	} else {
		user, err := s.CurrentUser(ctx, req)
		if err != nil {
			return false, err
		}
		if user == nil {
			return false, nil
		}
		role = Role(user.Role)
	}

	if !role.Valid() {
		return false, nil
	}
	return role.Permits(required), nil
}
