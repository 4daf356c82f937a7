package utils

import "github.com/google/uuid"

// GenerateID returns a random identifier used to correlate log records
// belonging to a single request.
func GenerateID() string {
	return uuid.NewString()
}
