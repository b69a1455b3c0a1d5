package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leasehub/leasehub/internal/domain/payment"
)

// SetConfig stores or replaces a landlord's gateway credentials.
func (s *Service) SetConfig(ctx context.Context, landlordID uuid.UUID, accountNumber, bankCode, apiToken string, active bool) (*payment.Config, error) {
	if accountNumber == "" || apiToken == "" {
		return nil, fmt.Errorf("account number and api token are required")
	}
	now := time.Now().UTC()
	cfg := &payment.Config{
		LandlordID:    landlordID,
		AccountNumber: accountNumber,
		BankCode:      bankCode,
		APIToken:      apiToken,
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	s.logger.Info().Str("landlord_id", landlordID.String()).Bool("active", active).Msg("payment config updated")
	return cfg, nil
}

// GetConfig returns a landlord's config, nil when none is stored. The API
// token never serializes.
func (s *Service) GetConfig(ctx context.Context, landlordID uuid.UUID) (*payment.Config, error) {
	return s.configs.GetByLandlord(ctx, landlordID)
}
