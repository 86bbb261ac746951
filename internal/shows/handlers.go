package shows

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telecal/telecal/internal/episodate"
)

// Handlers provides HTTP handlers for the tracked-show registry.
type Handlers struct {
	service *Service
}

// NewHandlers creates new registry handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the show routes. All of them require auth.
func (h *Handlers) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/shows", h.List, auth)
	e.POST("/show/:id", h.Add, auth)
	e.DELETE("/show/:id", h.Remove, auth)
}

// List returns the episode payload for every tracked show, sorted
// case-insensitively by show name.
// GET /shows
func (h *Handlers) List(c echo.Context) error {
	payloads, err := h.service.Payloads(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	SortPayloadsByName(payloads)

	// Return empty array instead of null
	if payloads == nil {
		payloads = []*episodate.Show{}
	}

	return c.JSON(http.StatusOK, payloads)
}

// Add starts tracking a show.
// POST /show/:id
func (h *Handlers) Add(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "show id is required")
	}

	if err := h.service.Add(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return c.String(http.StatusConflict, "Show already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.String(http.StatusCreated, "Added successfully")
}

// Remove stops tracking a show.
// DELETE /show/:id
func (h *Handlers) Remove(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "show id is required")
	}

	if err := h.service.Remove(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.String(http.StatusNotFound, "Show does not exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.String(http.StatusOK, "Removed successfully")
}
