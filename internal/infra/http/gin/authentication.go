package ginserver

import (
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"riide/internal/app/middleware"
	"riide/internal/app/services/auth"
	domainauth "riide/internal/domain/auth"
)

// AuthMiddleware attaches the admin session of a valid bearer token to the request
// context. Requests without one continue anonymously; restricted messages are refused
// further down by the bus authorization middleware.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	session, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionExpired) && m.Logger != nil {
			m.Logger.DebugContext(c.Request.Context(), "token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Request = c.Request.WithContext(middleware.ContextWithSession(c.Request.Context(), session))
	c.Next()
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
