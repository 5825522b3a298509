package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const openAPIPath = "/docs/openapi.json"

//go:embed swagger/openapi.json
var openAPISpec []byte

//go:embed swagger/index.html
var docsHTML string

// registerSwaggerRoutes serves the OpenAPI document and a Swagger UI page pointing at it.
func registerSwaggerRoutes(router gin.IRoutes) {
	router.GET(openAPIPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPISpec)
	})
	router.GET("/docs", func(c *gin.Context) {
		page := strings.ReplaceAll(docsHTML, "{{SPEC_URL}}", openAPIPath)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})
}
