package payment

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_gateway.go -package=mocks . Gateway,ConfigRepository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config holds a landlord's gateway credentials. Reconciliation for a
// landlord without an active, credentialed config is a guaranteed no-op.
type Config struct {
	LandlordID    uuid.UUID `json:"landlordId"`
	AccountNumber string    `json:"accountNumber"`
	BankCode      string    `json:"bankCode"`
	APIToken      string    `json:"-"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Usable reports whether the config can drive a ledger query.
func (c *Config) Usable() bool {
	return c != nil && c.Active && c.APIToken != "" && c.AccountNumber != ""
}

// Transaction is one entry of the external bank-transfer ledger. The system
// never persists these; only the id of a matched transaction is copied onto
// the payment record.
type Transaction struct {
	ID      string
	Amount  decimal.Decimal
	Content string
	Date    time.Time
}

// Match identifies the ledger transaction that settles an expected amount.
// Amount may exceed the expectation; over-payment is accepted.
type Match struct {
	TransactionID string
	Amount        decimal.Decimal
	PaidAt        time.Time
}

// Credentials is the slice of Config a Gateway needs to query the ledger.
type Credentials struct {
	AccountNumber string
	BankCode      string
	APIToken      string
}

// Gateway lists recent transactions from the external ledger. Implementations
// must bound the call with the context deadline; an empty slice with nil
// error simply means nothing arrived yet.
type Gateway interface {
	ListRecentTransactions(ctx context.Context, creds Credentials, limit int) ([]Transaction, error)
}

// ConfigRepository defines payment configuration persistence. GetByLandlord
// returns (nil, nil) when no config exists.
type ConfigRepository interface {
	GetByLandlord(ctx context.Context, landlordID uuid.UUID) (*Config, error)
	Upsert(ctx context.Context, c *Config) error
}
