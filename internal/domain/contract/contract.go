package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a contract.
type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusPendingSignature Status = "PENDING_SIGNATURE"
	StatusDepositPending   Status = "DEPOSIT_PENDING"
	StatusActive           Status = "ACTIVE"
	StatusTerminated       Status = "TERMINATED"
	StatusExpired          Status = "EXPIRED"
	StatusCancelled        Status = "CANCELLED"
)

// transitions is the closed transition table. Terminal states map to an
// empty set; a source state missing from the table is rejected outright.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusPendingSignature, StatusCancelled},
	StatusPendingSignature: {StatusDepositPending, StatusCancelled, StatusDraft},
	StatusDepositPending:   {StatusActive, StatusCancelled, StatusExpired},
	StatusActive:           {StatusTerminated, StatusExpired},
	StatusTerminated:       {},
	StatusExpired:          {},
	StatusCancelled:        {},
}

// Statuses lists every defined contract status.
func Statuses() []Status {
	return []Status{
		StatusDraft,
		StatusPendingSignature,
		StatusDepositPending,
		StatusActive,
		StatusTerminated,
		StatusExpired,
		StatusCancelled,
	}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// AllowedTargets returns the set of statuses reachable from s.
func AllowedTargets(s Status) []Status {
	targets := transitions[s]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

// ValidateTransition checks the transition table. A nil return means the
// caller may apply the transition; any error means no side effect may occur.
func ValidateTransition(from, to Status) error {
	targets, ok := transitions[from]
	if ok {
		for _, t := range targets {
			if t == to {
				return nil
			}
		}
	}
	return &InvalidTransitionError{From: from, To: to, Allowed: AllowedTargets(from)}
}

// InvalidTransitionError reports a transition attempt outside the table.
type InvalidTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid transition %s -> %s: %s is terminal", e.From, e.To, e.From)
	}
	parts := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		parts[i] = string(s)
	}
	return fmt.Sprintf("invalid transition %s -> %s: allowed targets are %s", e.From, e.To, strings.Join(parts, ", "))
}

var (
	// ErrNotFound is returned when a contract does not exist.
	ErrNotFound = errors.New("contract not found")
	// ErrUnauthorized is returned when the actor is neither the contract's
	// tenant nor its landlord.
	ErrUnauthorized = errors.New("actor is neither the contract's tenant nor landlord")
)

// Party identifies which side of the contract an actor is on.
type Party string

const (
	PartyTenant   Party = "TENANT"
	PartyLandlord Party = "LANDLORD"
	PartyNone     Party = ""
)

// Contract represents a lease between a landlord and a tenant for one room.
type Contract struct {
	ID             uuid.UUID  `json:"id"`
	ContractNumber string     `json:"contractNumber"`
	RoomID         uuid.UUID  `json:"roomId"`
	TenantID       uuid.UUID  `json:"tenantId"`
	LandlordID     uuid.UUID  `json:"landlordId"`
	ApplicationID  *uuid.UUID `json:"applicationId,omitempty"`

	MonthlyRent decimal.Decimal `json:"monthlyRent"`
	Deposit     decimal.Decimal `json:"deposit"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`

	Status Status `json:"status"`

	// PaymentRef is generated once on entering DEPOSIT_PENDING and never
	// changes afterwards. DepositDeadline is set if and only if the
	// contract is awaiting its deposit.
	PaymentRef      string     `json:"paymentRef,omitempty"`
	DepositDeadline *time.Time `json:"depositDeadline,omitempty"`

	TerminatedAt            *time.Time       `json:"terminatedAt,omitempty"`
	TerminationReason       *string          `json:"terminationReason,omitempty"`
	EarlyTerminationPenalty *decimal.Decimal `json:"earlyTerminationPenalty,omitempty"`
	NoticeDays              int              `json:"noticeDays,omitempty"`
	NegotiationNote         *string          `json:"negotiationNote,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PartyOf returns which side of the contract userID is on.
func (c *Contract) PartyOf(userID uuid.UUID) Party {
	switch userID {
	case c.TenantID:
		return PartyTenant
	case c.LandlordID:
		return PartyLandlord
	default:
		return PartyNone
	}
}

// AwaitingDeposit reports whether the deadline invariant currently holds on
// the deposit-pending side: status DEPOSIT_PENDING with a deadline set.
func (c *Contract) AwaitingDeposit() bool {
	return c.Status == StatusDepositPending && c.DepositDeadline != nil
}

// NormalizeRef strips every non-alphanumeric rune and upper-cases the rest.
// Both payment references and ledger transaction contents go through this
// before matching.
func NormalizeRef(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r + ('A' - 'a'))
		}
	}
	return b.String()
}

// PaymentRefFor derives the immutable payment reference from a contract
// number, e.g. "HD-LAND-202501-0001" -> "HDLAND2025010001".
func PaymentRefFor(contractNumber string) string {
	return NormalizeRef(contractNumber)
}

// NumberFor formats a contract number for a landlord, month and sequence:
// HD-{landlordPrefix}-{yyyyMM}-{seq}. The sequence must come from a
// serializable per (landlord, month) counter.
func NumberFor(landlordID uuid.UUID, at time.Time, seq int64) string {
	prefix := strings.ToUpper(strings.ReplaceAll(landlordID.String(), "-", "")[:4])
	return fmt.Sprintf("HD-%s-%s-%04d", prefix, at.Format("200601"), seq)
}

// YearMonth returns the counter key component for at, e.g. "202501".
func YearMonth(at time.Time) string {
	return at.Format("200601")
}
