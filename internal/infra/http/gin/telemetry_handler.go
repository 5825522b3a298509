package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"riide/internal/app/commands"
	telemetryapp "riide/internal/app/handlers/telemetry"
)

const maxMetricBytes = 64 << 10

type TelemetryHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

// Record stores an opaque client pricing event and answers 202.
func (h TelemetryHandler) Record(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMetricBytes)
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidPayload})
		return
	}
	result, err := commands.Dispatch[telemetryapp.RecordMetricCommand, *telemetryapp.RecordMetricResult](
		c.Request.Context(), h.Commands, telemetryapp.RecordMetricCommand{Payload: payload})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

var _ TelemetryHTTP = TelemetryHandler{}
