package domain

import "github.com/google/uuid"

// Notification is a derived message for a single recipient.
type Notification struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link"`
}
