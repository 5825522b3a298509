package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"riide/internal/app/dto"
	"riide/internal/app/handlers/checkout"
	"riide/internal/app/middleware"
	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
	"riide/internal/domain/telemetry"
	"riide/internal/infra/validation"
)

const (
	msgInvalidPayload   = "Payload invalide."
	msgInvalidDates     = "Dates invalides."
	msgVehicleNotFound  = "Véhicule introuvable."
	msgBookingNotFound  = "Réservation introuvable."
	msgEstimateMismatch = "Écart de tarification détecté. Veuillez rafraîchir et réessayer."
	msgConflict         = "Conflit de mise à jour, veuillez réessayer."
	msgPaymentsDown     = "Paiement momentanément indisponible."
	msgServerError      = "Erreur serveur."
)

// respondError maps application errors onto the public JSON error contract.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var mismatch *checkout.EstimateMismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusConflict, dto.EstimateMismatchResponse{Error: msgEstimateMismatch, PricingEstimateServer: mismatch.Server})
		return
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidPayload, "fields": verr.Fields})
		return
	}

	switch {
	case errors.Is(err, middleware.ErrValidation),
		errors.Is(err, domainbooking.ErrInvalidCustomer),
		errors.Is(err, telemetry.ErrInvalidMetric):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidPayload})
	case errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrStartInPast),
		errors.Is(err, domainbooking.ErrRangeTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidDates})
	case errors.Is(err, middleware.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, middleware.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, fleet.ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgVehicleNotFound})
	case errors.Is(err, domainbooking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgBookingNotFound})
	case errors.Is(err, domainbooking.ErrVersionConflict),
		errors.Is(err, domainbooking.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": msgConflict})
	case errors.Is(err, checkout.ErrPaymentsFailed):
		logError(c, logger, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": msgPaymentsDown})
	default:
		logError(c, logger, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
	}
}

func logError(c *gin.Context, logger *slog.Logger, err error) {
	_ = c.Error(err)
	if logger != nil {
		logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
}
