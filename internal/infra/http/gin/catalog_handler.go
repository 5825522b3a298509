package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"riide/internal/app/dto"
	catalogapp "riide/internal/app/handlers/catalog"
	"riide/internal/app/queries"
	"riide/internal/domain/pricing"
)

// CatalogHandler exposes the fleet, the demand calendar and price estimates.
type CatalogHandler struct {
	Queries         queries.Bus
	PaymentsEnabled bool
	Logger          *slog.Logger
}

func (h CatalogHandler) Health(c *gin.Context) {
	vehicles := 0
	if h.Queries != nil {
		if res, err := queries.Ask[catalogapp.ListVehiclesQuery, dto.VehicleCollection](c.Request.Context(), h.Queries, catalogapp.ListVehiclesQuery{}); err == nil {
			vehicles = len(res.Vehicles)
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "payments": h.PaymentsEnabled, "vehicles": vehicles})
}

func (h CatalogHandler) Vehicles(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	res, err := queries.Ask[catalogapp.ListVehiclesQuery, dto.VehicleCollection](c.Request.Context(), h.Queries, catalogapp.ListVehiclesQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h CatalogHandler) DemandPeriods(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	res, err := queries.Ask[catalogapp.ListDemandPeriodsQuery, dto.DemandPeriodCollection](c.Request.Context(), h.Queries, catalogapp.ListDemandPeriodsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Estimate answers GET /api/pricing/estimate?vehicleId=1&startDate=...&endDate=...
func (h CatalogHandler) Estimate(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := catalogapp.GetEstimateQuery{
		VehicleID: parseInt(c.Query("vehicleId")),
		StartDate: strings.TrimSpace(c.Query("startDate")),
		EndDate:   strings.TrimSpace(c.Query("endDate")),
	}
	res, err := queries.Ask[catalogapp.GetEstimateQuery, pricing.Estimate](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var _ CatalogHTTP = CatalogHandler{}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}
