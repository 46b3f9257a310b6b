package session

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// unauthenticated renders the 401 body. It carries the requested path so the
// client can return the user there after signing in.
func unauthenticated(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"code":        "unauthenticated",
		"message":     message,
		"redirect_to": c.Request().URL.Path,
	})
}

// Middleware validates the bearer token on each request, confirms the session
// snapshot still exists (sign-out deletes it, invalidating the token early),
// and sets identity values on the request context. The route guard downstream
// evaluates account state and roles.
func Middleware(tokens *TokenIssuer, store Store, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthenticated(c, "sign in to continue")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthenticated(c, "invalid authorization format")
			}

			tokenStr := parts[1]
			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				return unauthenticated(c, "invalid or expired token")
			}

			s, err := SessionFromClaims(claims, tokenStr)
			if err != nil {
				return unauthenticated(c, "invalid token claims")
			}

			// A signed-out session is gone from the store even when the
			// token itself has not expired yet.
			if _, err := store.GetByToken(c.Request().Context(), tokenStr); err != nil {
				return unauthenticated(c, "session not found")
			}

			c.SetRequest(c.Request().WithContext(NewContext(c.Request().Context(), s)))
			return next(c)
		}
	}
}

// Skipper returns true for paths that do not require an authenticated
// session: health checks and the auth entry points themselves. Sign-out and
// profile lookup stay authenticated.
func Skipper(c echo.Context) bool {
	switch c.Request().URL.Path {
	case "/health",
		"/api/auth/signin",
		"/api/auth/signup",
		"/api/auth/reset-password":
		return true
	}
	return false
}
