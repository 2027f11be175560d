package helpers

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	ErrNoAuthHeader  = errors.New("missing authorization header")
	ErrNoUserContext = errors.New("user not found in request context")
)

// GetJWTTokenFromContext extracts the bearer token from the request
// Authorization header.
func GetJWTTokenFromContext(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", ErrNoAuthHeader
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", ErrNoAuthHeader
	}
	return token, nil
}

// GetUserIDFromContext returns the authenticated user's ID, set by the
// JWT middleware.
func GetUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := GetUserIDRaw(c)
	if !ok {
		return uuid.Nil, ErrNoUserContext
	}
	return id, nil
}

// GetUserEmailFromContext returns the authenticated user's email, set by
// the JWT middleware.
func GetUserEmailFromContext(c echo.Context) (string, error) {
	email, ok := GetUserEmailRaw(c)
	if !ok {
		return "", ErrNoUserContext
	}
	return email, nil
}
