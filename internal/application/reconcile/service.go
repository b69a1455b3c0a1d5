package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/payment"
)

// Service matches incoming bank transfers against contract deposits. It is
// read-only with respect to the ledger: transactions are fetched, scanned and
// discarded, and only the id of a matched one leaves this package.
type Service struct {
	configs payment.ConfigRepository
	gateway payment.Gateway
	limit   int
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService creates a reconciliation service. limit bounds how many recent
// ledger entries one check scans; timeout bounds the gateway call.
func NewService(configs payment.ConfigRepository, gateway payment.Gateway, limit int, timeout time.Duration, logger zerolog.Logger) *Service {
	if limit <= 0 {
		limit = 50
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		configs: configs,
		gateway: gateway,
		limit:   limit,
		timeout: timeout,
		logger:  logger.With().Str("service", "reconcile").Logger(),
	}
}

// VerifyPayment looks for a ledger transaction settling the contract's
// deposit. Business "no match" is (nil, nil): a landlord without a usable
// payment configuration, an empty payment reference, a gateway failure or
// simply no qualifying transaction all land there. Only programmer errors
// propagate.
//
// A transaction qualifies when its normalized content contains the contract's
// normalized payment reference and its amount covers the expectation;
// over-payment is accepted.
func (s *Service) VerifyPayment(ctx context.Context, c *contract.Contract, expected decimal.Decimal) (*payment.Match, error) {
	cfg, err := s.configs.GetByLandlord(ctx, c.LandlordID)
	if err != nil {
		return nil, err
	}
	if !cfg.Usable() {
		s.logger.Debug().Str("landlord_id", c.LandlordID.String()).Msg("no usable payment config, skipping")
		return nil, nil
	}
	ref := contract.NormalizeRef(c.PaymentRef)
	if ref == "" {
		s.logger.Warn().Str("contract_id", c.ID.String()).Msg("contract awaiting deposit has no payment reference")
		return nil, nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	txs, err := s.gateway.ListRecentTransactions(cctx, payment.Credentials{
		AccountNumber: cfg.AccountNumber,
		BankCode:      cfg.BankCode,
		APIToken:      cfg.APIToken,
	}, s.limit)
	if err != nil {
		s.logger.Warn().Err(err).Str("contract_id", c.ID.String()).Msg("ledger query failed, treating as unmatched")
		return nil, nil
	}

	for _, t := range txs {
		if !matches(t, ref, expected) {
			continue
		}
		s.logger.Info().
			Str("contract_id", c.ID.String()).
			Str("transaction_id", t.ID).
			Str("amount", t.Amount.String()).
			Msg("deposit transaction matched")
		return &payment.Match{TransactionID: t.ID, Amount: t.Amount, PaidAt: t.Date}, nil
	}
	return nil, nil
}

func matches(t payment.Transaction, normalizedRef string, expected decimal.Decimal) bool {
	if t.Amount.LessThan(expected) {
		return false
	}
	return strings.Contains(contract.NormalizeRef(t.Content), normalizedRef)
}
