package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/leasehub/leasehub/internal/application/lifecycle"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
)

// Lifecycle is the slice of the lifecycle service the sweeps drive. Every
// operation is re-entrant: a repeated attempt fails its transition
// precondition and is a no-op.
type Lifecycle interface {
	CheckPaymentStatus(ctx context.Context, id, actorID uuid.UUID) (*lifecycle.PaymentStatus, error)
	CancelExpiredDeposit(ctx context.Context, id uuid.UUID) (*contract.Contract, error)
	ExpireContract(ctx context.Context, id uuid.UUID) (*contract.Contract, error)
	CancelStaleNegotiation(ctx context.Context, id uuid.UUID) (*contract.Contract, error)
	StaleAfter() time.Duration
}

// expiryWarningDays are the days-before-end marks at which tenants and
// landlords get a heads-up from the daily sweep.
var expiryWarningDays = []int{30, 15, 7, 3, 1}

// Config tunes the sweep cadence.
type Config struct {
	PendingInterval time.Duration // deposit sweep, default 5m
	DailyInterval   time.Duration // expiry/stale sweep, default 24h
	BatchLimit      int           // contracts per sweep pass
	Concurrency     int           // parallel payment checks
}

// Scheduler runs the background enforcement loops: deposits that never
// arrive get cancelled, leases past their end date expire, abandoned
// negotiations get cleaned up and approaching end dates produce warnings.
type Scheduler struct {
	lc        Lifecycle
	contracts contract.Repository
	notifier  lifecycle.Notifier
	cfg       Config
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates a scheduler.
func New(lc Lifecycle, contracts contract.Repository, notifier lifecycle.Notifier, cfg Config, logger zerolog.Logger) *Scheduler {
	if cfg.PendingInterval <= 0 {
		cfg.PendingInterval = 5 * time.Minute
	}
	if cfg.DailyInterval <= 0 {
		cfg.DailyInterval = 24 * time.Hour
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 200
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Scheduler{
		lc:        lc,
		contracts: contracts,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger.With().Str("service", "scheduler").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run drives both loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loop(ctx, s.cfg.PendingInterval, s.SweepPendingDeposits) })
	g.Go(func() error { return s.loop(ctx, s.cfg.DailyInterval, s.SweepDaily) })
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, sweep func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// SweepPendingDeposits walks every contract awaiting its deposit: past the
// deadline it is cancelled, otherwise the ledger is checked for the payment.
// Item failures are logged and never abort the pass.
func (s *Scheduler) SweepPendingDeposits(ctx context.Context) error {
	pending, err := s.contracts.ListByStatus(ctx, contract.StatusDepositPending, s.cfg.BatchLimit)
	if err != nil {
		return fmt.Errorf("list pending deposits: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	now := s.now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, c := range pending {
		c := c
		g.Go(func() error {
			if c.DepositDeadline != nil && c.DepositDeadline.Before(now) {
				if _, err := s.lc.CancelExpiredDeposit(ctx, c.ID); err != nil {
					s.logger.Error().Err(err).Str("contract_id", c.ID.String()).Msg("cancel expired deposit failed")
				}
				return nil
			}
			status, err := s.lc.CheckPaymentStatus(ctx, c.ID, c.TenantID)
			if err != nil {
				s.logger.Error().Err(err).Str("contract_id", c.ID.String()).Msg("payment check failed")
				return nil
			}
			if status.Matched {
				s.logger.Info().Str("contract_id", c.ID.String()).Msg("deposit settled by sweep")
			}
			return nil
		})
	}
	return g.Wait()
}

// SweepDaily expires leases past their end date, cancels stale negotiations
// and sends expiry warnings.
func (s *Scheduler) SweepDaily(ctx context.Context) error {
	now := s.now()

	ended, err := s.contracts.ListActiveEndedBefore(ctx, now, s.cfg.BatchLimit)
	if err != nil {
		return fmt.Errorf("list ended contracts: %w", err)
	}
	for _, c := range ended {
		if _, err := s.lc.ExpireContract(ctx, c.ID); err != nil {
			s.logger.Error().Err(err).Str("contract_id", c.ID.String()).Msg("expire failed")
		}
	}

	cutoff := now.Add(-s.lc.StaleAfter())
	stale, err := s.contracts.ListStaleNegotiations(ctx, cutoff, s.cfg.BatchLimit)
	if err != nil {
		return fmt.Errorf("list stale negotiations: %w", err)
	}
	for _, c := range stale {
		if _, err := s.lc.CancelStaleNegotiation(ctx, c.ID); err != nil {
			s.logger.Error().Err(err).Str("contract_id", c.ID.String()).Msg("stale cancel failed")
		}
	}

	s.warnUpcomingExpiries(ctx, now)
	return nil
}

// warnUpcomingExpiries notifies both parties of contracts ending at the
// warning marks. Best effort, daily cadence means each mark fires once.
func (s *Scheduler) warnUpcomingExpiries(ctx context.Context, now time.Time) {
	if s.notifier == nil {
		return
	}
	for _, days := range expiryWarningDays {
		dayStart := now.AddDate(0, 0, days).Truncate(24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)
		ending, err := s.contracts.ListActiveEndingBetween(ctx, dayStart, dayEnd)
		if err != nil {
			s.logger.Error().Err(err).Int("days", days).Msg("list upcoming expiries failed")
			continue
		}
		for _, c := range ending {
			msg := fmt.Sprintf("Contract %s ends in %d day(s), on %s.", c.ContractNumber, days, c.EndDate.Format("2006-01-02"))
			s.notifier.Send(c.TenantID, "Contract ending soon", msg, notification.CategoryContract, c.ID)
			s.notifier.Send(c.LandlordID, "Contract ending soon", msg, notification.CategoryContract, c.ID)
		}
	}
}
