package application

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows application listings.
type Filter struct {
	TenantID   *uuid.UUID
	LandlordID *uuid.UUID
	RoomID     *uuid.UUID
	Status     *Status
}

// Repository defines rental application persistence.
type Repository interface {
	Create(ctx context.Context, a *RentalApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*RentalApplication, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*RentalApplication, error)
	Update(ctx context.Context, a *RentalApplication) error
	// Complete links the originating application to its activated contract.
	Complete(ctx context.Context, id, contractID uuid.UUID, at time.Time) error
	// RejectOtherPending rejects every pending application for roomID other
	// than exceptID with the given reason, returning how many were touched.
	RejectOtherPending(ctx context.Context, roomID uuid.UUID, exceptID *uuid.UUID, reason string, at time.Time) (int64, error)
}
