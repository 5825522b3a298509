package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"riide/internal/app/dto"
	authsvc "riide/internal/app/services/auth"
)

type AuthHTTP interface {
	Login(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return
	}
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidPayload})
		return
	}
	result, err := h.Service.Login(c.Request.Context(), req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.AdminLoginResponse{Token: result.Token, ExpiresAt: result.Session.ExpiresAt})
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect."})
	case errors.Is(err, authsvc.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
	default:
		if h.Logger != nil {
			h.Logger.ErrorContext(c.Request.Context(), "admin login failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
	}
}

var _ AuthHTTP = AuthHandler{}
