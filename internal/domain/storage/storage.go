package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/leasehub/leasehub/internal/domain/application"
	"github.com/leasehub/leasehub/internal/domain/billing"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
	"github.com/leasehub/leasehub/internal/domain/payment"
	"github.com/leasehub/leasehub/internal/domain/room"
)

// Tx exposes the repositories bound to a single unit of work. Outside ExecTx
// the same accessors run against the pool directly.
type Tx interface {
	Contracts() contract.Repository
	Rooms() room.Repository
	Applications() application.Repository
	Billing() billing.Repository
	PaymentConfigs() payment.ConfigRepository
	Notifications() notification.Repository

	// NextContractSequence increments and returns the per-landlord,
	// per-month counter used to mint contract numbers.
	NextContractSequence(ctx context.Context, landlordID uuid.UUID, yearMonth string) (int64, error)
}

// Store is the root persistence handle. ExecTx runs fn inside one database
// transaction; any error rolls everything back.
type Store interface {
	Tx

	ExecTx(ctx context.Context, fn func(tx Tx) error) error
}
