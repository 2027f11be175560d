package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casaflow/casaflow/internal/application/services"
	"github.com/casaflow/casaflow/internal/core/domain/property"
	"github.com/casaflow/casaflow/internal/infrastructure/httpserver/helpers"
)

// Property handlers
func (s *Server) createProperty(c echo.Context) error {
	ownerID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req property.CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := s.propertySvc.CreateProperty(c.Request().Context(), ownerID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) getProperty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid property ID")
	}

	p, err := s.propertySvc.GetProperty(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "property not found")
	}

	return c.JSON(http.StatusOK, p)
}

func (s *Server) listProperties(c echo.Context) error {
	city := c.QueryParam("city")

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	items, total, err := s.propertySvc.ListProperties(c.Request().Context(), city, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list properties")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"properties": items,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

func (s *Server) updateProperty(c echo.Context) error {
	actorID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid property ID")
	}

	var req property.UpdatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := s.propertySvc.UpdateProperty(c.Request().Context(), id, actorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrNotListingOwner) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "property not found")
	}

	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProperty(c echo.Context) error {
	actorID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid property ID")
	}

	if err := s.propertySvc.DeleteProperty(c.Request().Context(), id, actorID); err != nil {
		if errors.Is(err, services.ErrNotListingOwner) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "property not found")
	}

	return c.NoContent(http.StatusNoContent)
}
