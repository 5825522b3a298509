package dto

import (
	"time"

	"riide/internal/domain/telemetry"
)

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MetricCollection struct {
	Metrics []telemetry.Metric `json:"metrics"`
}
