package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware requires a valid bearer token and stores the caller's
// identity (user_id, role, is_admin) into the request context. Handlers pass
// that identity into every query explicitly; nothing else is ambient.
func JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := parseBearer(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		}
		applyClaims(c, claims)
		return next(c)
	}
}

// OptionalJWT parses a bearer token when one is present but lets anonymous
// requests through. Handlers see a missing user_id for anonymous callers.
// Product detail needs this: the page is public, but only signed-in visits
// count as views, and the seller browsing their own listing never does.
func OptionalJWT(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "" {
			if claims, err := parseBearer(c); err == nil {
				applyClaims(c, claims)
			}
		}
		return next(c)
	}
}

func parseBearer(c echo.Context) (jwt.MapClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing Authorization header")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) || len(authHeader) == len(prefix) {
		return nil, errors.New("invalid Authorization format")
	}
	tokenStr := authHeader[len(prefix):]

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	if _, ok := claims["user_id"].(string); !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func applyClaims(c echo.Context, claims jwt.MapClaims) {
	if id, ok := claims["user_id"].(string); ok {
		c.Set("user_id", id)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
	if isAdmin, ok := claims["is_admin"].(bool); ok {
		c.Set("is_admin", isAdmin)
	}
}
