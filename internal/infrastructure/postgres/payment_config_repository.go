package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/leasehub/leasehub/internal/domain/payment"
)

// PaymentConfigRepository implements payment.ConfigRepository.
type PaymentConfigRepository struct {
	db DBTX
}

func NewPaymentConfigRepository(db DBTX) *PaymentConfigRepository {
	return &PaymentConfigRepository{db: db}
}

func (r *PaymentConfigRepository) GetByLandlord(ctx context.Context, landlordID uuid.UUID) (*payment.Config, error) {
	row := r.db.QueryRow(ctx, `
		SELECT landlord_id, account_number, bank_code, api_token, active, created_at, updated_at
		FROM payment_configs WHERE landlord_id=$1
	`, landlordID)
	var c payment.Config
	if err := row.Scan(&c.LandlordID, &c.AccountNumber, &c.BankCode, &c.APIToken, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PaymentConfigRepository) Upsert(ctx context.Context, c *payment.Config) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_configs (landlord_id, account_number, bank_code, api_token, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (landlord_id) DO UPDATE SET
			account_number=EXCLUDED.account_number,
			bank_code=EXCLUDED.bank_code,
			api_token=EXCLUDED.api_token,
			active=EXCLUDED.active,
			updated_at=EXCLUDED.updated_at
	`, c.LandlordID, c.AccountNumber, c.BankCode, c.APIToken, c.Active, c.CreatedAt, c.UpdatedAt)
	return err
}
