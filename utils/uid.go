package utils

import uuid "github.com/twinj/uuid"

// GenerateUID Return id, or a fresh identifier when id is empty
func GenerateUID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewV4().String()
}
