package middleware

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v4"

	"github.com/lost2found/backend/internal/models"
)

// ParseLocalToken validates an HS256 JWT issued for a local (password)
// account and returns its claims.
func ParseLocalToken(tokenString string) (*models.JwtCustomClaims, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey" // Must match the secret used for signing
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// LocalUID derives the context UID for a local account, keeping it
// distinct from Firebase UIDs.
func LocalUID(claims *models.JwtCustomClaims) string {
	return fmt.Sprintf("local-%d", claims.UserID)
}
