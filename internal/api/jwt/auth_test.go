package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/api/apierr"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLifespan(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
		invalid  bool
	}{
		{value: "7d", expected: 7 * 24 * time.Hour},
		{value: "2w", expected: 14 * 24 * time.Hour},
		{value: "90m", expected: 90 * time.Minute},
		{value: " 12h ", expected: 12 * time.Hour},
		{value: "3600", expected: time.Hour},
		{value: "", invalid: true},
		{value: "0", invalid: true},
		{value: "-5m", invalid: true},
		{value: "xd", invalid: true},
		{value: "soon", invalid: true},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			lifespan, err := ParseLifespan(test.value)
			if test.invalid {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, lifespan)
		})
	}
}

// newTestServer returns an echo instance guarded by the provider's
// middleware, with one route for each access level.
func newTestServer(auth *jwtAuthProvider) *echo.Echo {
	ec := echo.New()
	ec.HTTPErrorHandler = apierr.GetHTTPErrorHandler()
	ec.Use(auth.Middleware())

	ok := func(ec echo.Context) error { return ec.NoContent(http.StatusOK) }
	ec.GET("/public", ok)
	ec.GET("/private", ok, auth.RequireAuth())
	ec.GET("/admin", ok, auth.RequireRole(user.RoleAdmin))
	ec.GET("/writes", ok, auth.RequireAuthForWrites())
	ec.POST("/writes", ok, auth.RequireAuthForWrites())
	ec.POST("/logout", func(ec echo.Context) error {
		auth.RevokeTokenInContext(ec)
		return ec.NoContent(http.StatusNoContent)
	}, auth.RequireAuth())

	return ec
}

func request(ec *echo.Echo, method string, path string, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, req)
	return rec.Code
}

func token(t *testing.T, auth *jwtAuthProvider, role user.Role) string {
	tkn, exp, err := auth.GenerateToken(&user.User{ID: uuid.New(), Role: role})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(auth.lifespan), exp, time.Second)

	return tkn
}

func TestMiddleware_AccessLevels(t *testing.T) {
	auth := NewJwtAuth([]byte("secret"), time.Hour)
	ec := newTestServer(auth)

	userToken := token(t, auth, user.RoleUser)
	adminToken := token(t, auth, user.RoleAdmin)

	tests := []struct {
		summary string
		method  string
		path    string
		token   string
		status  int
	}{
		{"anonymous public", http.MethodGet, "/public", "", http.StatusOK},
		{"anonymous private", http.MethodGet, "/private", "", http.StatusUnauthorized},
		{"user private", http.MethodGet, "/private", userToken, http.StatusOK},
		{"anonymous admin", http.MethodGet, "/admin", "", http.StatusUnauthorized},
		{"user admin", http.MethodGet, "/admin", userToken, http.StatusForbidden},
		{"admin admin", http.MethodGet, "/admin", adminToken, http.StatusOK},
		{"anonymous read", http.MethodGet, "/writes", "", http.StatusOK},
		{"anonymous write", http.MethodPost, "/writes", "", http.StatusUnauthorized},
		{"user write", http.MethodPost, "/writes", userToken, http.StatusOK},
		{"garbage token on public route", http.MethodGet, "/public", "garbage", http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			assert.Equal(t, test.status, request(ec, test.method, test.path, test.token))
		})
	}
}

func TestMiddleware_RejectsForeignAndExpiredTokens(t *testing.T) {
	auth := NewJwtAuth([]byte("secret"), time.Hour)
	ec := newTestServer(auth)

	foreign := token(t, NewJwtAuth([]byte("another-secret"), time.Hour), user.RoleUser)
	assert.Equal(t, http.StatusUnauthorized, request(ec, http.MethodGet, "/private", foreign))

	expired := token(t, NewJwtAuth([]byte("secret"), -time.Minute), user.RoleUser)
	assert.Equal(t, http.StatusUnauthorized, request(ec, http.MethodGet, "/private", expired))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevokeTokenInContext(t *testing.T) {
	auth := NewJwtAuth([]byte("secret"), time.Hour)
	ec := newTestServer(auth)

	tkn := token(t, auth, user.RoleUser)
	require.Equal(t, http.StatusOK, request(ec, http.MethodGet, "/private", tkn))

	require.Equal(t, http.StatusNoContent, request(ec, http.MethodPost, "/logout", tkn))
	assert.True(t, auth.blacklistedTokens.Has(tkn))
	assert.Equal(t, http.StatusUnauthorized, request(ec, http.MethodGet, "/private", tkn))

	other := token(t, auth, user.RoleUser)
	assert.Equal(t, http.StatusOK, request(ec, http.MethodGet, "/private", other), "revoking one token must not affect others")
}
