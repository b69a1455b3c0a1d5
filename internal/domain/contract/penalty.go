package contract

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TerminationQuote is the financial consequence of terminating a contract.
// The quote is a pure function of the contract's stored deposit and dates,
// so it can run inside the termination transaction without external calls.
type TerminationQuote struct {
	DaysRemaining int             `json:"daysRemaining"`
	Early         bool            `json:"early"`
	Penalty       decimal.Decimal `json:"penalty"`
	Reason        string          `json:"reason"`
}

const (
	reasonRanCourse      = "contract ran its course; no penalty"
	reasonTenantEarly    = "tenant terminated early; full deposit forfeited"
	reasonLandlordEarly  = "landlord terminated early; deposit refunded plus equal compensation"
	landlordPenaltyTimes = 2
)

// QuoteTermination computes the early-termination penalty.
//
// If the contract end date has passed, the penalty is zero regardless of
// initiator. A tenant terminating early forfeits the full deposit,
// independent of notice given. A landlord terminating early owes the deposit
// back plus the same amount again in compensation.
func QuoteTermination(deposit decimal.Decimal, endDate, now time.Time, by Party) TerminationQuote {
	daysRemaining := int(math.Ceil(endDate.Sub(now).Hours() / 24))
	if daysRemaining <= 0 {
		return TerminationQuote{
			DaysRemaining: daysRemaining,
			Penalty:       decimal.Zero,
			Reason:        reasonRanCourse,
		}
	}

	q := TerminationQuote{DaysRemaining: daysRemaining, Early: true}
	switch by {
	case PartyLandlord:
		q.Penalty = deposit.Mul(decimal.NewFromInt(landlordPenaltyTimes))
		q.Reason = reasonLandlordEarly
	default:
		q.Penalty = deposit
		q.Reason = reasonTenantEarly
	}
	return q
}
