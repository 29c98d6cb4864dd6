package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends data as the raw JSON body, the way the marketplace API answers
func JSONResponse(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// JSONError sends a structured error response. Field errors, when present,
// are added as {"field": ["message"]} next to the detail.
func JSONError(c *gin.Context, status int, err error, message string, fields map[string]string) {
	body := gin.H{
		"detail": message,
		"error":  err.Error(),
	}
	for field, msg := range fields {
		body[field] = []string{msg}
	}
	c.JSON(status, body)
}
