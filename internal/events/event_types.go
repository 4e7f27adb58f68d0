package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventOrderPlaced    EventType = "order.placed"
)

// AllEventTypes lists every type services publish.
var AllEventTypes = []EventType{EventUserRegistered, EventOrderPlaced}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderPlacedItem is a line of OrderPlacedPayload.
type OrderPlacedItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	Total   decimal.Decimal   `json:"total"`
	Country string            `json:"country"`
	Items   []OrderPlacedItem `json:"items"`
}
