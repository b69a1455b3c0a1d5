package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the settlement state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

// PaymentStatus represents the state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// MethodBankTransfer is the only settlement method the reconciliation
// pipeline produces.
const MethodBankTransfer = "BANK_TRANSFER"

// Invoice is a billing document attached to a contract. The deposit invoice
// is created exactly once, inside the activation transaction.
type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	ContractID    uuid.UUID       `json:"contractId"`
	TenantID      uuid.UUID       `json:"tenantId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Description   string          `json:"description"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        InvoiceStatus   `json:"status"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Payment records money received against an invoice. TransactionID carries
// the external ledger entry that settled it, when one exists.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoiceId"`
	TenantID      uuid.UUID       `json:"tenantId"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        PaymentStatus   `json:"status"`
	TransactionID *string         `json:"transactionId,omitempty"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// DepositInvoiceNumber is the deterministic number for a contract's deposit
// invoice; its uniqueness is what makes settlement creation idempotent.
func DepositInvoiceNumber(contractNumber string) string {
	return fmt.Sprintf("INV-%s-DEP", contractNumber)
}
