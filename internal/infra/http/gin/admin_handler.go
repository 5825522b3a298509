package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"riide/internal/app/dto"
	bookingapp "riide/internal/app/handlers/bookings"
	telemetryapp "riide/internal/app/handlers/telemetry"
	"riide/internal/app/queries"
)

type AdminHTTP interface {
	Bookings(c *gin.Context)
	Metrics(c *gin.Context)
}

// AdminHandler serves the back office. Role checks happen on the query bus.
type AdminHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h AdminHandler) Bookings(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := bookingapp.AdminListQuery{Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.AdminListQuery, dto.AdminBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) Metrics(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[telemetryapp.ListMetricsQuery, dto.MetricCollection](c.Request.Context(), h.Queries, telemetryapp.ListMetricsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
