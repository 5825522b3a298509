package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"riide/internal/app/commands"
	"riide/internal/app/dto"
	bookingapp "riide/internal/app/handlers/bookings"
	"riide/internal/app/handlers/checkout"
	"riide/internal/app/queries"
)

const IdempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h BookingHandler) Checkout(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidPayload})
		return
	}
	cmd := checkout.CheckoutCommand{
		VehicleID: int(req.VehicleID),
		StartDate: strings.TrimSpace(req.StartDate),
		EndDate:   strings.TrimSpace(req.EndDate),
		Customer: checkout.CustomerInput{
			Name:  strings.TrimSpace(req.Customer.Name),
			Email: strings.TrimSpace(req.Customer.Email),
			Phone: strings.TrimSpace(req.Customer.Phone),
		},
		Notes:           req.Notes,
		ClaimedEstimate: req.PricingEstimate,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(IdempotencyHeader)),
	}
	result, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) PublicRanges(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := bookingapp.PublicRangesQuery{Months: parseIntWithDefault(c.Query("months"), bookingapp.DefaultHorizonMonths)}
	result, err := queries.Ask[bookingapp.PublicRangesQuery, dto.PublicRangeCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
