package contract

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows contract listings.
type Filter struct {
	TenantID   *uuid.UUID
	LandlordID *uuid.UUID
	RoomID     *uuid.UUID
	Status     *Status
	Search     string
}

// Repository defines contract persistence. Implementations bound to a
// transaction make GetForUpdate take a row lock; pool-bound implementations
// degrade to a plain read.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Contract, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Contract, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]*Contract, error)
	// ListActiveEndedBefore returns ACTIVE contracts whose end date lies
	// strictly before cutoff.
	ListActiveEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Contract, error)
	// ListActiveEndingBetween returns ACTIVE contracts ending inside
	// [from, to); used for expiry warnings.
	ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]*Contract, error)
	// ListStaleNegotiations returns DRAFT and PENDING_SIGNATURE contracts
	// not updated since cutoff.
	ListStaleNegotiations(ctx context.Context, cutoff time.Time, limit int) ([]*Contract, error)
	Update(ctx context.Context, c *Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
}
