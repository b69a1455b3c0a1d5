package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/leasehub/leasehub/internal/domain/contract"
)

const contractColumns = `id, contract_number, room_id, tenant_id, landlord_id, application_id,
	monthly_rent, deposit, start_date, end_date, status, payment_ref, deposit_deadline,
	terminated_at, termination_reason, early_termination_penalty, notice_days,
	negotiation_note, created_at, updated_at`

// ContractRepository implements contract.Repository.
type ContractRepository struct {
	db DBTX
}

func NewContractRepository(db DBTX) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO contracts (`+contractColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`, c.ID, c.ContractNumber, c.RoomID, c.TenantID, c.LandlordID, c.ApplicationID,
		c.MonthlyRent, c.Deposit, c.StartDate, c.EndDate, c.Status, nullIfEmpty(c.PaymentRef), c.DepositDeadline,
		c.TerminatedAt, c.TerminationReason, c.EarlyTerminationPenalty, c.NoticeDays,
		c.NegotiationNote, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id=$1`, id)
	return scanContract(row)
}

func (r *ContractRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id=$1 FOR UPDATE`, id)
	return scanContract(row)
}

func (r *ContractRepository) List(ctx context.Context, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts`
	args := []any{}
	where := ""
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		and("tenant_id=$" + strconv.Itoa(len(args)))
	}
	if filter.LandlordID != nil {
		args = append(args, *filter.LandlordID)
		and("landlord_id=$" + strconv.Itoa(len(args)))
	}
	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		and("room_id=$" + strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		and("status=$" + strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		and("contract_number ILIKE $" + strconv.Itoa(len(args)))
	}
	query += where + " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContracts(rows)
}

func (r *ContractRepository) ListByStatus(ctx context.Context, status contract.Status, limit int) ([]*contract.Contract, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE status=$1 ORDER BY created_at ASC LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContracts(rows)
}

func (r *ContractRepository) ListActiveEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*contract.Contract, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE status=$1 AND end_date < $2 ORDER BY end_date ASC LIMIT $3
	`, contract.StatusActive, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContracts(rows)
}

func (r *ContractRepository) ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]*contract.Contract, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE status=$1 AND end_date >= $2 AND end_date < $3 ORDER BY end_date ASC
	`, contract.StatusActive, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContracts(rows)
}

func (r *ContractRepository) ListStaleNegotiations(ctx context.Context, cutoff time.Time, limit int) ([]*contract.Contract, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE status = ANY($1) AND updated_at < $2 ORDER BY updated_at ASC LIMIT $3
	`, []contract.Status{contract.StatusDraft, contract.StatusPendingSignature}, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContracts(rows)
}

func (r *ContractRepository) Update(ctx context.Context, c *contract.Contract) error {
	_, err := r.db.Exec(ctx, `
		UPDATE contracts SET
			monthly_rent=$1, deposit=$2, start_date=$3, end_date=$4, status=$5,
			payment_ref=$6, deposit_deadline=$7, terminated_at=$8, termination_reason=$9,
			early_termination_penalty=$10, notice_days=$11, negotiation_note=$12, updated_at=$13
		WHERE id=$14
	`, c.MonthlyRent, c.Deposit, c.StartDate, c.EndDate, c.Status,
		nullIfEmpty(c.PaymentRef), c.DepositDeadline, c.TerminatedAt, c.TerminationReason,
		c.EarlyTerminationPenalty, c.NoticeDays, c.NegotiationNote, c.UpdatedAt, c.ID)
	return err
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM contracts WHERE id=$1`, id)
	return err
}

func scanContract(row pgx.Row) (*contract.Contract, error) {
	var c contract.Contract
	var paymentRef *string
	if err := row.Scan(&c.ID, &c.ContractNumber, &c.RoomID, &c.TenantID, &c.LandlordID, &c.ApplicationID,
		&c.MonthlyRent, &c.Deposit, &c.StartDate, &c.EndDate, &c.Status, &paymentRef, &c.DepositDeadline,
		&c.TerminatedAt, &c.TerminationReason, &c.EarlyTerminationPenalty, &c.NoticeDays,
		&c.NegotiationNote, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contract.ErrNotFound
		}
		return nil, err
	}
	if paymentRef != nil {
		c.PaymentRef = *paymentRef
	}
	return &c, nil
}

func scanContracts(rows pgx.Rows) ([]*contract.Contract, error) {
	var out []*contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
