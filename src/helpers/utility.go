package helpers

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a fresh v4 UUID string
func GenerateUUID() string {
	return uuid.New().String()
}
