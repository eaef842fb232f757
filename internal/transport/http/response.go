package httptransport

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response wrapper for analysis calls: exactly one of
// Data/Error is populated depending on Success.
type Envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

// RespondSuccess writes a populated envelope.
func RespondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

// RespondError writes a failure envelope carrying the message.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Data:    nil,
		Error:   &message,
	})
}
