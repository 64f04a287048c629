package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plashmag/editorial/internal/activity"
	"github.com/plashmag/editorial/internal/hash"
	"github.com/plashmag/editorial/internal/models"
	"github.com/plashmag/editorial/internal/session"
	"github.com/plashmag/editorial/internal/store"
)

type fakeCookies struct {
	remember string
	expires  time.Time
	cleared  bool
}

func (f *fakeCookies) SetRememberCookie(value string, expiresAt time.Time) {
	f.remember = value
	f.expires = expiresAt
	f.cleared = false
}

func (f *fakeCookies) ClearRememberCookie() {
	f.remember = ""
	f.cleared = true
}

type testEnv struct {
	svc *Service
	db  *gorm.DB
	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RememberToken{}))

	env := &testEnv{db: db, now: time.Now().UTC()}
	env.svc = &Service{
		Users:    &store.Users{DB: db},
		Tokens:   &store.RememberTokens{DB: db},
		Sessions: session.NewMemoryStore(),
		Activity: activity.NewRecorder(nil),
		Now:      func() time.Time { return env.now },
	}
	return env
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func (e *testEnv) createUser(t *testing.T, email, password, role, status string) *models.User {
	t.Helper()
	digest, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		Status:       status,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func newRequest() (*Request, *fakeCookies) {
	ck := &fakeCookies{}
	return &Request{SessionID: uuid.NewString(), Cookies: ck}, ck
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)

	user, err := env.svc.Authenticate(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	require.NotNil(t, user.LastLogin, "login must stamp last_login")

	// Email is trimmed and case-normalized before lookup.
	user, err = env.svc.Authenticate(ctx, "  A@X.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	// Wrong password and unknown email fail identically.
	_, errWrong := env.svc.Authenticate(ctx, "a@x.com", "wrong")
	_, errUnknown := env.svc.Authenticate(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)

	_, err := env.svc.Authenticate(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, env.db.Model(user).Update("status", models.StatusInactive).Error)

	_, err = env.svc.Authenticate(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)
	req, _ := newRequest()

	ok, err := env.svc.IsAuthenticated(ctx, req)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, env.svc.StartSession(ctx, req, user, false))

	ok, err = env.svc.IsAuthenticated(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)

	// Just under the idle threshold the session holds.
	env.advance(SessionIdleTimeout - time.Second)
	ok, err = env.svc.IsAuthenticated(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)

	// At exactly the threshold it reads as absent and is cleared.
	env.advance(time.Second)
	ok, err = env.svc.IsAuthenticated(ctx, req)
	require.NoError(t, err)
	assert.False(t, ok)

	_, present := env.svc.Sessions.Get(req.SessionID)
	assert.False(t, present, "stale session state must be cleared on read")
}

func TestRememberToken_SilentRelogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)

	req, ck := newRequest()
	require.NoError(t, env.svc.StartSession(ctx, req, user, true))
	require.NotEmpty(t, ck.remember)
	assert.WithinDuration(t, env.now.Add(RememberTokenTTL), ck.expires, time.Second)

	// Fresh browser launch: no session state, cookie retained.
	fresh, freshCk := newRequest()
	fresh.RememberToken = ck.remember

	ok, err := env.svc.IsAuthenticated(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, ok)

	_, present := env.svc.Sessions.Get(fresh.SessionID)
	assert.True(t, present, "redemption must establish a fresh session")

	// Redemption re-issues the token, sliding the 30-day window.
	assert.NotEmpty(t, freshCk.remember)
	assert.NotEqual(t, ck.remember, freshCk.remember)
}

func TestRememberToken_TamperedAndExpired(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)

	req, ck := newRequest()
	require.NoError(t, env.svc.StartSession(ctx, req, user, true))

	tampered, tamperedCk := newRequest()
	tampered.RememberToken = "tampered-value"
	ok, err := env.svc.IsAuthenticated(ctx, tampered)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, tamperedCk.cleared, "failed redemption must clear the cookie")

	env.advance(RememberTokenTTL + time.Hour)
	expired, expiredCk := newRequest()
	expired.RememberToken = ck.remember
	ok, err = env.svc.IsAuthenticated(ctx, expired)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, expiredCk.cleared)

	var count int64
	require.NoError(t, env.db.Model(&models.RememberToken{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "expired row is removed during lookup")
}

func TestRememberToken_InactiveUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)

	req, ck := newRequest()
	require.NoError(t, env.svc.StartSession(ctx, req, user, true))

	require.NoError(t, env.db.Model(user).Update("status", models.StatusInactive).Error)

	fresh, freshCk := newRequest()
	fresh.RememberToken = ck.remember
	ok, err := env.svc.IsAuthenticated(ctx, fresh)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, freshCk.cleared)
}

func TestIdleTimeoutWithValidToken_Reauthenticates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)

	req, ck := newRequest()
	require.NoError(t, env.svc.StartSession(ctx, req, user, true))

	env.advance(SessionIdleTimeout + time.Minute)
	req.RememberToken = ck.remember

	// The timed-out session falls through to token redemption instead of
	// revoking the token.
	ok, err := env.svc.IsAuthenticated(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)

	sess, present := env.svc.Sessions.Get(req.SessionID)
	require.True(t, present)
	assert.Equal(t, env.now, sess.LoginAt, "redemption restarts the idle window")
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)
	req, _ := newRequest()

	got, err := env.svc.CurrentUser(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, env.svc.StartSession(ctx, req, user, false))

	got, err = env.svc.CurrentUser(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// Deactivation after login defeats the still-valid session blob.
	require.NoError(t, env.db.Model(user).Update("status", models.StatusInactive).Error)
	got, err = env.svc.CurrentUser(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDestroySession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)

	req, ck := newRequest()
	require.NoError(t, env.svc.StartSession(ctx, req, user, true))
	require.NotEmpty(t, ck.remember)

	require.NoError(t, env.svc.DestroySession(ctx, req))
	assert.True(t, ck.cleared)

	ok, err := env.svc.IsAuthenticated(ctx, req)
	require.NoError(t, err)
	assert.False(t, ok)

	var count int64
	require.NoError(t, env.db.Model(&models.RememberToken{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count, "logout revokes the remember token")

	// Idempotent: destroying again, or with no session at all, never errors.
	require.NoError(t, env.svc.DestroySession(ctx, req))
	empty, _ := newRequest()
	require.NoError(t, env.svc.DestroySession(ctx, empty))
}

func TestHasPermission(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		required Role
		override Role
		want     bool
	}{
		{name: "admin passes admin gate", required: RoleAdmin, override: RoleAdmin, want: true},
		{name: "admin passes athlete gate", required: RoleAthlete, override: RoleAdmin, want: true},
		{name: "admin passes partner gate", required: RolePartner, override: RoleAdmin, want: true},
		{name: "exact match", required: RoleAthlete, override: RoleAthlete, want: true},
		{name: "no hierarchy among non-admin roles", required: RoleAthlete, override: RoleCollaborator, want: false},
		{name: "non-admin cannot reach admin", required: RoleAdmin, override: RolePartner, want: false},
	}

	req, _ := newRequest()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.svc.HasPermission(ctx, req, tc.required, tc.override)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	// Without an override and without a principal no role resolves.
	got, err := env.svc.HasPermission(ctx, req, RoleAthlete)
	require.NoError(t, err)
	assert.False(t, got)

	// Resolved from the current user when no override is given.
	user := env.createUser(t, "a@x.com", "secret1", "athlete", models.StatusActive)
	require.NoError(t, env.svc.StartSession(ctx, req, user, false))
	got, err = env.svc.HasPermission(ctx, req, RoleAthlete)
	require.NoError(t, err)
	assert.True(t, got)
	got, err = env.svc.HasPermission(ctx, req, RoleAdmin)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
