package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateBuildID returns a unique identifier for one graph build.
func GenerateBuildID() string {
	return uuid.NewString()
}

// GenerateRequestID generates a short request ID for log correlation.
func GenerateRequestID() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:8])
}

// GenerateRunLabel returns a human-readable label with a timestamp prefix.
func GenerateRunLabel(prefix string) string {
	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("%s-%s-%s", prefix, timestamp, uuid.NewString()[:8])
}
