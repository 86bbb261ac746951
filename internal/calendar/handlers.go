package calendar

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for the calendar feed.
type Handlers struct {
	service *Service
}

// NewHandlers creates new calendar handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the calendar route. The feed is public so
// calendar clients can subscribe without credentials.
func (h *Handlers) RegisterRoutes(e *echo.Echo) {
	e.GET("/calendar", h.Feed)
}

// Feed returns the iCalendar document for all tracked shows.
// GET /calendar
func (h *Handlers) Feed(c echo.Context) error {
	feed, err := h.service.Feed(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Blob(http.StatusOK, "text/calendar", []byte(feed))
}
