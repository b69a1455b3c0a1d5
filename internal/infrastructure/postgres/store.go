package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leasehub/leasehub/internal/domain/application"
	"github.com/leasehub/leasehub/internal/domain/billing"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
	"github.com/leasehub/leasehub/internal/domain/payment"
	"github.com/leasehub/leasehub/internal/domain/room"
	"github.com/leasehub/leasehub/internal/domain/storage"
)

// DBTX is the common surface of *pgxpool.Pool and pgx.Tx, so every
// repository runs unchanged inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queries binds every repository to one DBTX.
type queries struct {
	db DBTX
}

func (q queries) Contracts() contract.Repository           { return &ContractRepository{db: q.db} }
func (q queries) Rooms() room.Repository                   { return &RoomRepository{db: q.db} }
func (q queries) Applications() application.Repository     { return &ApplicationRepository{db: q.db} }
func (q queries) Billing() billing.Repository              { return &BillingRepository{db: q.db} }
func (q queries) PaymentConfigs() payment.ConfigRepository { return &PaymentConfigRepository{db: q.db} }
func (q queries) Notifications() notification.Repository   { return &NotificationRepository{db: q.db} }

// NextContractSequence bumps the per (landlord, month) counter. The upsert
// takes a row lock, so two concurrent creators serialize here and can never
// mint the same number.
func (q queries) NextContractSequence(ctx context.Context, landlordID uuid.UUID, yearMonth string) (int64, error) {
	var seq int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO contract_sequences (landlord_id, year_month, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (landlord_id, year_month) DO UPDATE SET seq = contract_sequences.seq + 1
		RETURNING seq
	`, landlordID, yearMonth).Scan(&seq)
	return seq, err
}

// Store implements storage.Store on a pgx pool.
type Store struct {
	queries
	pool *pgxpool.Pool
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{queries: queries{db: pool}, pool: pool}
}

// ExecTx runs fn inside one database transaction. The repositories handed to
// fn are bound to that transaction, so FOR UPDATE reads hold their locks
// until commit or rollback.
func (s *Store) ExecTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
