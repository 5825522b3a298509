package ginserver

import (
	"html"
	"net/http"

	gin "github.com/gin-gonic/gin"
)

// SuccessPage is where the payment provider (or simulation mode) sends the customer back.
func SuccessPage(c *gin.Context) {
	renderPage(c, "Paiement validé", c.Query("bookingId"))
}

func CancelPage(c *gin.Context) {
	renderPage(c, "Paiement annulé", c.Query("bookingId"))
}

func renderPage(c *gin.Context, title, bookingID string) {
	if bookingID == "" {
		bookingID = "-"
	}
	body := "<h1>" + title + "</h1><p>Booking: " + html.EscapeString(bookingID) + "</p>"
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}
