package utils

import (
	"github.com/google/uuid"
)

// RequestIDHeader carries the id correlating client and server logs
const RequestIDHeader = "X-Request-ID"

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}
