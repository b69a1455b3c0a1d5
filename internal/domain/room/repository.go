package room

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines room persistence.
type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)
	// GetForUpdate re-reads the room inside the current transaction with a
	// row lock. The room row is the serialization point between competing
	// contracts, so every occupancy-changing transition goes through it.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)
	List(ctx context.Context, landlordID *uuid.UUID, limit, offset int) ([]*Room, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
