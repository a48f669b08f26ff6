package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// FirebaseAuthMiddleware creates an Echo middleware to verify Firebase ID
// tokens. When Firebase verification fails, the token is tried as a local
// account JWT so password-based users share the same API surface.
func FirebaseAuthMiddleware(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}
			idToken := tokenParts[1]

			token, err := authClient.VerifyIDToken(context.Background(), idToken)
			if err != nil {
				// Not a Firebase token; try a local account JWT.
				claims, jwtErr := ParseLocalToken(idToken)
				if jwtErr != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
				}
				c.Set("firebaseUID", LocalUID(claims))
				c.Set("email", claims.Email)
				return next(c)
			}

			// Store identity details in the context for later use
			c.Set("firebaseUID", token.UID)
			if email, ok := token.Claims["email"].(string); ok {
				c.Set("email", email)
			}
			if name, ok := token.Claims["name"].(string); ok {
				c.Set("name", name)
			}

			return next(c)
		}
	}
}
