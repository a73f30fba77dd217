package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-management/internal/auth"
)

// Context keys under which the guard stores the authenticated identity.
const (
	principalKey = "principal"
	userIDKey    = "user_id"
	roleKey      = "role"
)

// JWTAuth returns the access guard: an Echo middleware that extracts the
// Bearer token from the Authorization header, verifies it, and injects the
// resulting principal into the request context. On any failure the request
// is rejected with 401 and a generic body before the protected handler runs;
// whether the token was missing, malformed, expired or forged is not
// revealed to the client.
func JWTAuth(tokens *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := tokens.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			p := claims.Principal()
			c.Set(principalKey, p)
			// Flat keys kept for middleware that only needs one field.
			c.Set(userIDKey, p.ID)
			c.Set(roleKey, p.Role)
			return next(c)
		}
	}
}

// CurrentPrincipal returns the principal stored by JWTAuth. The second
// return is false when the route was not behind the guard.
func CurrentPrincipal(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}
