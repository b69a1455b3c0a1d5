package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehub/leasehub/internal/domain/application"
	"github.com/leasehub/leasehub/internal/domain/billing"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
	"github.com/leasehub/leasehub/internal/domain/payment"
	"github.com/leasehub/leasehub/internal/domain/room"
	"github.com/leasehub/leasehub/internal/domain/storage"
)

// CreateContractInput carries everything needed to draft a contract.
type CreateContractInput struct {
	LandlordID    uuid.UUID
	RoomID        uuid.UUID
	TenantID      uuid.UUID
	ApplicationID *uuid.UUID
	MonthlyRent   decimal.Decimal
	Deposit       decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
	NoticeDays    int
	// SkipNegotiation creates the contract directly in DEPOSIT_PENDING,
	// reserving the room and starting the deposit clock immediately.
	SkipNegotiation bool
}

func (in CreateContractInput) validate() error {
	if !in.EndDate.After(in.StartDate) {
		return fmt.Errorf("end date must be after start date")
	}
	if in.MonthlyRent.Sign() <= 0 {
		return fmt.Errorf("monthly rent must be positive")
	}
	if in.Deposit.Sign() <= 0 {
		return fmt.Errorf("deposit must be positive")
	}
	if in.TenantID == in.LandlordID {
		return fmt.Errorf("tenant and landlord must differ")
	}
	return nil
}

// CreateContract drafts a contract for a room. The landlord must have a
// usable payment configuration up front, otherwise the deposit could never be
// reconciled. The contract number comes from a serializable per
// (landlord, month) counter, so concurrent creators never collide.
func (s *Service) CreateContract(ctx context.Context, in CreateContractInput) (*contract.Contract, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	cfg, err := s.store.PaymentConfigs().GetByLandlord(ctx, in.LandlordID)
	if err != nil {
		return nil, fmt.Errorf("load payment config: %w", err)
	}
	if !cfg.Usable() {
		return nil, fmt.Errorf("landlord has no active payment configuration")
	}

	now := s.now()
	c := &contract.Contract{
		ID:            uuid.New(),
		RoomID:        in.RoomID,
		TenantID:      in.TenantID,
		LandlordID:    in.LandlordID,
		ApplicationID: in.ApplicationID,
		MonthlyRent:   in.MonthlyRent,
		Deposit:       in.Deposit,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        contract.StatusDraft,
		NoticeDays:    in.NoticeDays,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.store.ExecTx(ctx, func(tx storage.Tx) error {
		r, err := tx.Rooms().GetForUpdate(ctx, in.RoomID)
		if err != nil {
			return err
		}
		if r.LandlordID != in.LandlordID {
			return contract.ErrUnauthorized
		}
		if r.Status != room.StatusAvailable {
			return &room.UnavailableError{RoomID: r.ID, Status: r.Status}
		}
		if in.ApplicationID != nil {
			a, err := tx.Applications().GetByID(ctx, *in.ApplicationID)
			if err != nil {
				return err
			}
			if a.RoomID != in.RoomID || a.TenantID != in.TenantID {
				return fmt.Errorf("application %s does not belong to this room and tenant", a.ID)
			}
			if a.Status != application.StatusApproved {
				return fmt.Errorf("application %s is not approved", a.ID)
			}
		}

		seq, err := tx.NextContractSequence(ctx, in.LandlordID, contract.YearMonth(now))
		if err != nil {
			return fmt.Errorf("next contract sequence: %w", err)
		}
		c.ContractNumber = contract.NumberFor(in.LandlordID, now, seq)

		if in.SkipNegotiation {
			c.Status = contract.StatusDepositPending
			c.PaymentRef = contract.PaymentRefFor(c.ContractNumber)
			deadline := now.Add(s.cfg.DepositWindow)
			c.DepositDeadline = &deadline
			if err := tx.Rooms().UpdateStatus(ctx, r.ID, room.StatusReserved); err != nil {
				return err
			}
		}
		return tx.Contracts().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("contract_id", c.ID.String()).
		Str("contract_number", c.ContractNumber).
		Str("status", string(c.Status)).
		Msg("contract created")
	if c.Status == contract.StatusDepositPending {
		s.notify(c.TenantID, "Deposit requested",
			fmt.Sprintf("Transfer the deposit with reference %s before the deadline to activate contract %s.", c.PaymentRef, c.ContractNumber),
			notification.CategoryContract, c.ID)
	} else {
		s.notify(c.TenantID, "Contract drafted",
			fmt.Sprintf("A contract draft %s has been prepared for you.", c.ContractNumber),
			notification.CategoryContract, c.ID)
	}
	return c, nil
}

// GetContract retrieves a contract; only its tenant or landlord may read it.
func (s *Service) GetContract(ctx context.Context, id, actorID uuid.UUID) (*contract.Contract, error) {
	c, err := s.store.Contracts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.PartyOf(actorID) == contract.PartyNone {
		return nil, contract.ErrUnauthorized
	}
	return c, nil
}

// ListContracts returns contracts matching the filter.
func (s *Service) ListContracts(ctx context.Context, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	return s.store.Contracts().List(ctx, filter, limit, offset)
}

// SendContract moves a draft to PENDING_SIGNATURE and reserves the room.
// Landlord only.
func (s *Service) SendContract(ctx context.Context, id, landlordID uuid.UUID) (*contract.Contract, error) {
	c, err := s.transition(ctx, id, contract.StatusPendingSignature, func(tx storage.Tx, c *contract.Contract) error {
		if c.LandlordID != landlordID {
			return contract.ErrUnauthorized
		}
		r, err := tx.Rooms().GetForUpdate(ctx, c.RoomID)
		if err != nil {
			return err
		}
		if r.Status != room.StatusAvailable {
			return &room.UnavailableError{RoomID: r.ID, Status: r.Status}
		}
		return tx.Rooms().UpdateStatus(ctx, r.ID, room.StatusReserved)
	})
	if err != nil {
		return nil, err
	}
	s.notify(c.TenantID, "Contract ready to sign",
		fmt.Sprintf("Contract %s is awaiting your signature.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	return c, nil
}

// RevokeContract pulls a contract out of PENDING_SIGNATURE and releases the
// room. A landlord revoking gets the draft back for editing; a tenant
// revoking declines the contract outright.
func (s *Service) RevokeContract(ctx context.Context, id, actorID uuid.UUID) (*contract.Contract, error) {
	var target contract.Status
	c, err := s.transitionDynamic(ctx, id, func(tx storage.Tx, c *contract.Contract) (contract.Status, error) {
		switch c.PartyOf(actorID) {
		case contract.PartyLandlord:
			target = contract.StatusDraft
		case contract.PartyTenant:
			target = contract.StatusCancelled
		default:
			return "", contract.ErrUnauthorized
		}
		if target == contract.StatusCancelled {
			reason := "declined by tenant"
			c.TerminationReason = &reason
		}
		return target, tx.Rooms().UpdateStatus(ctx, c.RoomID, room.StatusAvailable)
	})
	if err != nil {
		return nil, err
	}
	other := c.TenantID
	if actorID == c.TenantID {
		other = c.LandlordID
	}
	s.notify(other, "Contract revoked",
		fmt.Sprintf("Contract %s has been withdrawn from signing.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	return c, nil
}

// RequestChanges sends a PENDING_SIGNATURE contract back to DRAFT with the
// tenant's note, releasing the room. Tenant only.
func (s *Service) RequestChanges(ctx context.Context, id, tenantID uuid.UUID, note string) (*contract.Contract, error) {
	c, err := s.transition(ctx, id, contract.StatusDraft, func(tx storage.Tx, c *contract.Contract) error {
		if c.TenantID != tenantID {
			return contract.ErrUnauthorized
		}
		c.NegotiationNote = &note
		return tx.Rooms().UpdateStatus(ctx, c.RoomID, room.StatusAvailable)
	})
	if err != nil {
		return nil, err
	}
	s.notify(c.LandlordID, "Changes requested",
		fmt.Sprintf("The tenant requested changes to contract %s.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	return c, nil
}

// CancelContract cancels a DRAFT. Either party may cancel during negotiation.
func (s *Service) CancelContract(ctx context.Context, id, actorID uuid.UUID, reason string) (*contract.Contract, error) {
	c, err := s.transition(ctx, id, contract.StatusCancelled, func(tx storage.Tx, c *contract.Contract) error {
		if c.PartyOf(actorID) == contract.PartyNone {
			return contract.ErrUnauthorized
		}
		if reason != "" {
			c.TerminationReason = &reason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	other := c.TenantID
	if actorID == c.TenantID {
		other = c.LandlordID
	}
	s.notify(other, "Contract cancelled",
		fmt.Sprintf("Contract %s has been cancelled.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	return c, nil
}

// TenantApprove signs the contract: PENDING_SIGNATURE moves to
// DEPOSIT_PENDING, the payment reference is minted from the contract number
// and the deposit clock starts.
func (s *Service) TenantApprove(ctx context.Context, id, tenantID uuid.UUID) (*contract.Contract, error) {
	c, err := s.transition(ctx, id, contract.StatusDepositPending, func(tx storage.Tx, c *contract.Contract) error {
		if c.TenantID != tenantID {
			return contract.ErrUnauthorized
		}
		c.PaymentRef = contract.PaymentRefFor(c.ContractNumber)
		deadline := s.now().Add(s.cfg.DepositWindow)
		c.DepositDeadline = &deadline
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(c.LandlordID, "Contract signed",
		fmt.Sprintf("The tenant signed contract %s; awaiting the deposit.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	s.notify(c.TenantID, "Deposit requested",
		fmt.Sprintf("Transfer the deposit with reference %s before the deadline to activate contract %s.", c.PaymentRef, c.ContractNumber),
		notification.CategoryPayment, c.ID)
	return c, nil
}

// PaymentStatus is the result of a deposit check.
type PaymentStatus struct {
	Matched bool            `json:"matched"`
	Status  contract.Status `json:"status"`
}

// CheckPaymentStatus reconciles the contract's deposit against the external
// ledger. It is idempotent and never errors for "nothing arrived yet": an
// ACTIVE contract short-circuits to matched, a DEPOSIT_PENDING one is checked
// against the gateway outside any transaction and activated on match, and
// everything else reports unmatched with the current status.
func (s *Service) CheckPaymentStatus(ctx context.Context, id, actorID uuid.UUID) (*PaymentStatus, error) {
	c, err := s.store.Contracts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.PartyOf(actorID) == contract.PartyNone {
		return nil, contract.ErrUnauthorized
	}
	switch c.Status {
	case contract.StatusActive:
		return &PaymentStatus{Matched: true, Status: contract.StatusActive}, nil
	case contract.StatusDepositPending:
	default:
		return &PaymentStatus{Matched: false, Status: c.Status}, nil
	}

	m, err := s.verifier.VerifyPayment(ctx, c, c.Deposit)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return &PaymentStatus{Matched: false, Status: c.Status}, nil
	}

	if err := s.activate(ctx, c.ID, m); err != nil {
		var ite *contract.InvalidTransitionError
		if errors.As(err, &ite) {
			// Lost the race against another checker or the sweep. Report
			// whatever the winner left behind.
			cur, gerr := s.store.Contracts().GetByID(ctx, id)
			if gerr != nil {
				return nil, gerr
			}
			return &PaymentStatus{Matched: cur.Status == contract.StatusActive, Status: cur.Status}, nil
		}
		return nil, err
	}
	return &PaymentStatus{Matched: true, Status: contract.StatusActive}, nil
}

// activate commits the DEPOSIT_PENDING to ACTIVE transition together with all
// its side effects: the room becomes OCCUPIED, the deposit settlement is
// recorded exactly once, the originating application completes and every
// other pending application for the room is rejected.
func (s *Service) activate(ctx context.Context, id uuid.UUID, m *payment.Match) error {
	now := s.now()
	var c *contract.Contract
	err := s.store.ExecTx(ctx, func(tx storage.Tx) error {
		var err error
		c, err = tx.Contracts().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := contract.ValidateTransition(c.Status, contract.StatusActive); err != nil {
			return err
		}
		c.Status = contract.StatusActive
		c.DepositDeadline = nil
		c.UpdatedAt = now
		if err := tx.Contracts().Update(ctx, c); err != nil {
			return err
		}
		if err := tx.Rooms().UpdateStatus(ctx, c.RoomID, room.StatusOccupied); err != nil {
			return err
		}

		// Settlement is keyed on the deterministic invoice number, so a
		// replayed activation attempt cannot double-book the deposit.
		invNo := billing.DepositInvoiceNumber(c.ContractNumber)
		inv, err := tx.Billing().GetInvoiceByNumber(ctx, invNo)
		if err != nil {
			return err
		}
		if inv == nil {
			inv = &billing.Invoice{
				ID:            uuid.New(),
				ContractID:    c.ID,
				TenantID:      c.TenantID,
				InvoiceNumber: invNo,
				Description:   fmt.Sprintf("Security deposit for contract %s", c.ContractNumber),
				IssueDate:     now,
				DueDate:       now,
				TotalAmount:   c.Deposit,
				Status:        billing.InvoiceStatusPaid,
				PaidAt:        &now,
				CreatedAt:     now,
			}
			if err := tx.Billing().CreateInvoice(ctx, inv); err != nil {
				return err
			}
			txID := m.TransactionID
			paidAt := m.PaidAt
			if paidAt.IsZero() {
				paidAt = now
			}
			p := &billing.Payment{
				ID:            uuid.New(),
				InvoiceID:     inv.ID,
				TenantID:      c.TenantID,
				Amount:        m.Amount,
				Method:        billing.MethodBankTransfer,
				Status:        billing.PaymentStatusCompleted,
				TransactionID: &txID,
				PaidAt:        &paidAt,
				CreatedAt:     now,
			}
			if err := tx.Billing().CreatePayment(ctx, p); err != nil {
				return err
			}
		}

		if c.ApplicationID != nil {
			if err := tx.Applications().Complete(ctx, *c.ApplicationID, c.ID, now); err != nil {
				return err
			}
		}
		rejected, err := tx.Applications().RejectOtherPending(ctx, c.RoomID, c.ApplicationID, application.RejectionReasonRoomTaken, now)
		if err != nil {
			return err
		}
		if rejected > 0 {
			s.logger.Info().Int64("count", rejected).Str("room_id", c.RoomID.String()).Msg("rejected competing applications")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("contract_id", c.ID.String()).
		Str("contract_number", c.ContractNumber).
		Str("transaction_id", m.TransactionID).
		Msg("contract activated")
	s.notify(c.TenantID, "Contract activated",
		fmt.Sprintf("Your deposit was received; contract %s is now active.", c.ContractNumber),
		notification.CategoryPayment, c.ID)
	s.notify(c.LandlordID, "Contract activated",
		fmt.Sprintf("The deposit for contract %s was received; the lease is active.", c.ContractNumber),
		notification.CategoryPayment, c.ID)
	return nil
}

// CancelExpiredDeposit cancels a DEPOSIT_PENDING contract whose deadline has
// passed and releases the room. A contract still inside its window is left
// untouched.
func (s *Service) CancelExpiredDeposit(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	now := s.now()
	c, err := s.transition(ctx, id, contract.StatusCancelled, func(tx storage.Tx, c *contract.Contract) error {
		if c.DepositDeadline == nil || !c.DepositDeadline.Before(now) {
			return fmt.Errorf("deposit deadline has not passed for contract %s", c.ID)
		}
		reason := "deposit payment deadline expired"
		c.TerminationReason = &reason
		c.DepositDeadline = nil
		return tx.Rooms().UpdateStatus(ctx, c.RoomID, room.StatusAvailable)
	})
	if err != nil {
		return nil, err
	}
	s.notify(c.TenantID, "Contract cancelled",
		fmt.Sprintf("Contract %s was cancelled because the deposit deadline passed.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	s.notify(c.LandlordID, "Contract cancelled",
		fmt.Sprintf("Contract %s was cancelled; the deposit never arrived.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	return c, nil
}

// ExpireContract marks an ACTIVE contract past its end date EXPIRED and
// releases the room.
func (s *Service) ExpireContract(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	now := s.now()
	c, err := s.transition(ctx, id, contract.StatusExpired, func(tx storage.Tx, c *contract.Contract) error {
		if !c.EndDate.Before(now) {
			return fmt.Errorf("contract %s has not reached its end date", c.ID)
		}
		return tx.Rooms().UpdateStatus(ctx, c.RoomID, room.StatusAvailable)
	})
	if err != nil {
		return nil, err
	}
	s.notify(c.TenantID, "Contract expired",
		fmt.Sprintf("Contract %s has run its full term and is now expired.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	s.notify(c.LandlordID, "Contract expired",
		fmt.Sprintf("Contract %s has expired; the room is available again.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	return c, nil
}

// CancelStaleNegotiation cancels a DRAFT or PENDING_SIGNATURE contract that
// sat untouched past the staleness threshold, releasing the room.
func (s *Service) CancelStaleNegotiation(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	now := s.now()
	c, err := s.transition(ctx, id, contract.StatusCancelled, func(tx storage.Tx, c *contract.Contract) error {
		if now.Sub(c.UpdatedAt) <= s.cfg.StaleAfter {
			return fmt.Errorf("contract %s negotiation is not stale", c.ID)
		}
		reason := "negotiation abandoned"
		c.TerminationReason = &reason
		// Only a sent contract holds the room's reservation. A stale DRAFT
		// left the room AVAILABLE, and a competing contract may hold it now.
		if c.Status == contract.StatusPendingSignature {
			return tx.Rooms().UpdateStatus(ctx, c.RoomID, room.StatusAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(c.LandlordID, "Draft cancelled",
		fmt.Sprintf("Contract %s was cancelled after sitting idle.", c.ContractNumber),
		notification.CategoryContract, c.ID)
	return c, nil
}

// PreviewTermination quotes what terminating now would cost, without changing
// anything. Only a party to the contract may ask.
func (s *Service) PreviewTermination(ctx context.Context, id, actorID uuid.UUID) (*contract.TerminationQuote, error) {
	c, err := s.store.Contracts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	by := c.PartyOf(actorID)
	if by == contract.PartyNone {
		return nil, contract.ErrUnauthorized
	}
	q := contract.QuoteTermination(c.Deposit, c.EndDate, s.now(), by)
	return &q, nil
}

// Terminate ends an ACTIVE contract. The penalty quote is computed and
// persisted in the same transaction as the status change and room release.
func (s *Service) Terminate(ctx context.Context, id, actorID uuid.UUID, reason string, noticeDays int) (*contract.Contract, error) {
	now := s.now()
	var quote contract.TerminationQuote
	c, err := s.transition(ctx, id, contract.StatusTerminated, func(tx storage.Tx, c *contract.Contract) error {
		by := c.PartyOf(actorID)
		if by == contract.PartyNone {
			return contract.ErrUnauthorized
		}
		quote = contract.QuoteTermination(c.Deposit, c.EndDate, now, by)
		c.TerminatedAt = &now
		c.EarlyTerminationPenalty = &quote.Penalty
		c.NoticeDays = noticeDays
		if reason == "" {
			reason = quote.Reason
		}
		c.TerminationReason = &reason
		return tx.Rooms().UpdateStatus(ctx, c.RoomID, room.StatusAvailable)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("contract_id", c.ID.String()).
		Str("penalty", quote.Penalty.String()).
		Int("days_remaining", quote.DaysRemaining).
		Msg("contract terminated")
	s.notify(c.TenantID, "Contract terminated",
		fmt.Sprintf("Contract %s has been terminated. %s", c.ContractNumber, quote.Reason),
		notification.CategoryContract, c.ID)
	s.notify(c.LandlordID, "Contract terminated",
		fmt.Sprintf("Contract %s has been terminated. %s", c.ContractNumber, quote.Reason),
		notification.CategoryContract, c.ID)
	return c, nil
}

// transition applies a fixed-target state change: re-read FOR UPDATE,
// validate against the transition table, run the side effects, persist. Any
// error inside rolls the whole unit back.
func (s *Service) transition(ctx context.Context, id uuid.UUID, to contract.Status, effects func(tx storage.Tx, c *contract.Contract) error) (*contract.Contract, error) {
	return s.transitionDynamic(ctx, id, func(tx storage.Tx, c *contract.Contract) (contract.Status, error) {
		return to, effects(tx, c)
	})
}

// transitionDynamic is transition for operations whose target depends on the
// actor, such as revocation.
func (s *Service) transitionDynamic(ctx context.Context, id uuid.UUID, effects func(tx storage.Tx, c *contract.Contract) (contract.Status, error)) (*contract.Contract, error) {
	now := s.now()
	var out *contract.Contract
	err := s.store.ExecTx(ctx, func(tx storage.Tx) error {
		c, err := tx.Contracts().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		to, err := effects(tx, c)
		if err != nil {
			return err
		}
		if err := contract.ValidateTransition(c.Status, to); err != nil {
			return err
		}
		c.Status = to
		if to != contract.StatusDepositPending {
			c.DepositDeadline = nil
		}
		c.UpdatedAt = now
		if err := tx.Contracts().Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
