package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-management/internal/auth"
)

func newGuardedEcho(t *testing.T, tokens *auth.TokenIssuer, reached *bool) *echo.Echo {
	t.Helper()
	e := echo.New()
	g := e.Group("/v1")
	g.Use(JWTAuth(tokens))
	g.GET("/protected", func(c echo.Context) error {
		*reached = true
		p, ok := CurrentPrincipal(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, p)
	})
	return e
}

func doRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenIssuer("secret", 60)
	tok, _, err := tokens.Issue("user-1", "a@b.com", "user")
	require.NoError(t, err)

	reached := false
	e := newGuardedEcho(t, tokens, &reached)

	rec := doRequest(e, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached, "handler should run for a valid token")
	assert.Contains(t, rec.Body.String(), `"id":"user-1"`)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
}

func TestJWTAuth_RejectsBeforeHandler(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenIssuer("secret", 60)

	expired, _, err := auth.NewTokenIssuer("secret", -1).Issue("user-1", "a@b.com", "user")
	require.NoError(t, err)
	forged, _, err := auth.NewTokenIssuer("other-secret", 60).Issue("user-1", "a@b.com", "user")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"malformed token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"forged token", "Bearer " + forged},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			e := newGuardedEcho(t, tokens, &reached)

			rec := doRequest(e, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, reached, "handler must not run")
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenIssuer("secret", 60)
	adminTok, _, err := tokens.Issue("admin-1", "admin@b.com", "admin")
	require.NoError(t, err)
	userTok, _, err := tokens.Issue("user-1", "user@b.com", "user")
	require.NoError(t, err)

	e := echo.New()
	g := e.Group("/v1")
	g.Use(JWTAuth(tokens))
	g.GET("/admin-only", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/v1/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
