package notification

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category groups notifications by the entity they concern.
type Category string

const (
	CategoryApplication Category = "APPLICATION"
	CategoryContract    Category = "CONTRACT"
	CategoryPayment     Category = "PAYMENT"
)

// Notification is an in-app message for a user. Delivery is best effort:
// failures are logged and never propagate into the transition that caused
// them.
type Notification struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"userId"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Category        Category   `json:"category"`
	RelatedEntityID *uuid.UUID `json:"relatedEntityId,omitempty"`
	Read            bool       `json:"read"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Repository defines notification persistence.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
