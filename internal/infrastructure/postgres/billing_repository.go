package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/leasehub/leasehub/internal/domain/billing"
)

const invoiceColumns = `id, contract_id, tenant_id, invoice_number, description,
	issue_date, due_date, total_amount, status, paid_at, created_at`

const paymentColumns = `id, invoice_id, tenant_id, amount, method, status,
	transaction_id, paid_at, created_at`

// BillingRepository implements billing.Repository.
type BillingRepository struct {
	db DBTX
}

func NewBillingRepository(db DBTX) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) CreateInvoice(ctx context.Context, inv *billing.Invoice) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, inv.ID, inv.ContractID, inv.TenantID, inv.InvoiceNumber, inv.Description,
		inv.IssueDate, inv.DueDate, inv.TotalAmount, inv.Status, inv.PaidAt, inv.CreatedAt)
	return err
}

func (r *BillingRepository) GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number=$1`, invoiceNumber)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return inv, err
}

func (r *BillingRepository) ListInvoicesByContract(ctx context.Context, contractID uuid.UUID) ([]*billing.Invoice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE contract_id=$1 ORDER BY created_at DESC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*billing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *BillingRepository) CreatePayment(ctx context.Context, p *billing.Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, p.ID, p.InvoiceID, p.TenantID, p.Amount, p.Method, p.Status,
		p.TransactionID, p.PaidAt, p.CreatedAt)
	return err
}

func (r *BillingRepository) GetCompletedPayment(ctx context.Context, invoiceID uuid.UUID) (*billing.Payment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE invoice_id=$1 AND status=$2
		ORDER BY created_at ASC LIMIT 1
	`, invoiceID, billing.PaymentStatusCompleted)
	var p billing.Payment
	if err := row.Scan(&p.ID, &p.InvoiceID, &p.TenantID, &p.Amount, &p.Method, &p.Status,
		&p.TransactionID, &p.PaidAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func scanInvoice(row pgx.Row) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := row.Scan(&inv.ID, &inv.ContractID, &inv.TenantID, &inv.InvoiceNumber, &inv.Description,
		&inv.IssueDate, &inv.DueDate, &inv.TotalAmount, &inv.Status, &inv.PaidAt, &inv.CreatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}
