package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/infrastructure/httpserver/helpers"
)

// getOwnProfile returns the authenticated user's account
func (s *Server) getOwnProfile(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	u, err := s.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
	}

	return c.JSON(http.StatusOK, u)
}
