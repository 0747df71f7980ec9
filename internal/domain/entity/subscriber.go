package entity

import (
	"strings"
	"time"
)

// Subscriber is the aggregate root for the subscriber domain.
// Email is stored normalized (trimmed, lowercased) and is unique
// across all live records.
type Subscriber struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// All uniqueness comparisons operate on this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims surrounding whitespace.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
