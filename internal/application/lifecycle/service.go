package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
	"github.com/leasehub/leasehub/internal/domain/payment"
	"github.com/leasehub/leasehub/internal/domain/storage"
)

// PaymentVerifier checks the external ledger for a transaction settling the
// expected amount against the contract's payment reference. A nil match with
// nil error means nothing arrived yet.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, c *contract.Contract, expected decimal.Decimal) (*payment.Match, error)
}

// Notifier delivers best-effort notifications. Implementations must never
// block the caller; failures are their own problem to log.
type Notifier interface {
	Send(userID uuid.UUID, title, content string, category notification.Category, relatedID uuid.UUID)
}

// Config tunes the lifecycle timers.
type Config struct {
	// DepositWindow is how long a tenant has to wire the deposit after
	// signing, before the contract is cancelled.
	DepositWindow time.Duration
	// StaleAfter is how long a DRAFT or PENDING_SIGNATURE contract may sit
	// untouched before the daily sweep cancels it.
	StaleAfter time.Duration
}

// Service owns every contract and application state transition. All writes
// run inside Store.ExecTx with the affected rows re-read under FOR UPDATE and
// the transition precondition re-checked, so concurrent callers race on the
// database lock rather than on stale in-memory state.
type Service struct {
	store    storage.Store
	verifier PaymentVerifier
	notifier Notifier
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a lifecycle service.
func NewService(store storage.Store, verifier PaymentVerifier, notifier Notifier, cfg Config, logger zerolog.Logger) *Service {
	if cfg.DepositWindow <= 0 {
		cfg.DepositWindow = 24 * time.Hour
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 7 * 24 * time.Hour
	}
	return &Service{
		store:    store,
		verifier: verifier,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With().Str("service", "lifecycle").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StaleAfter exposes the negotiation staleness threshold to the scheduler.
func (s *Service) StaleAfter() time.Duration {
	return s.cfg.StaleAfter
}

func (s *Service) notify(userID uuid.UUID, title, content string, category notification.Category, relatedID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Send(userID, title, content, category, relatedID)
}
