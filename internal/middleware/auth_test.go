package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgenyq/kitesafari-booking/internal/auth"
)

type staticAdmins map[int64]bool

func (a staticAdmins) IsAdmin(_ context.Context, telegramID int64) (bool, error) {
	return a[telegramID], nil
}

const testJWTSecret = "test-secret"

func runIdentity(t *testing.T, admins AdminChecker, setup func(*http.Request)) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my-bookings", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	verifier := auth.NewTelegramVerifier("123456:TEST-TOKEN", 0)
	reached := false
	next := func(echo.Context) error { reached = true; return nil }
	err := Identity(verifier, testJWTSecret, admins)(next)(c)
	require.NoError(t, err)
	return rec, c, reached
}

func TestIdentityAcceptsServiceToken(t *testing.T) {
	token, err := auth.NewServiceToken(testJWTSecret, 42, "bot", time.Minute)
	require.NoError(t, err)

	_, c, reached := runIdentity(t, staticAdmins{42: true}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	assert.True(t, reached)
	assert.Equal(t, int64(42), c.Get(ContextTelegramID))
	assert.Equal(t, "bot", c.Get(ContextHandle))
	assert.Equal(t, true, c.Get(ContextIsAdmin))
}

func TestIdentityRejectsMissingCredentials(t *testing.T) {
	rec, _, reached := runIdentity(t, staticAdmins{}, nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_ERROR")
}

func TestIdentityRejectsForgedToken(t *testing.T) {
	token, err := auth.NewServiceToken("wrong-secret", 42, "bot", time.Minute)
	require.NoError(t, err)

	rec, _, reached := runIdentity(t, staticAdmins{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityNonAdminIsMarkedFalse(t *testing.T) {
	token, err := auth.NewServiceToken(testJWTSecret, 43, "guest", time.Minute)
	require.NoError(t, err)

	_, c, reached := runIdentity(t, staticAdmins{42: true}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	assert.True(t, reached)
	assert.Equal(t, false, c.Get(ContextIsAdmin))
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()

	run := func(isAdmin any) (*httptest.ResponseRecorder, bool) {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/bookings", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if isAdmin != nil {
			c.Set(ContextIsAdmin, isAdmin)
		}
		reached := false
		next := func(echo.Context) error { reached = true; return nil }
		require.NoError(t, RequireAdmin()(next)(c))
		return rec, reached
	}

	rec, reached := run(true)
	assert.True(t, reached)
	assert.NotEqual(t, http.StatusForbidden, rec.Code)

	rec, reached = run(false)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, reached = run(nil)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
