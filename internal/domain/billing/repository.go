package billing

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines invoice and payment persistence. GetInvoiceByNumber and
// GetCompletedPayment return (nil, nil) when no row exists.
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	ListInvoicesByContract(ctx context.Context, contractID uuid.UUID) ([]*Invoice, error)
	CreatePayment(ctx context.Context, p *Payment) error
	GetCompletedPayment(ctx context.Context, invoiceID uuid.UUID) (*Payment, error)
}
