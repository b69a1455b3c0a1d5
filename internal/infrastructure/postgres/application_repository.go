package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/leasehub/leasehub/internal/domain/application"
)

const applicationColumns = `id, room_id, tenant_id, landlord_id, status, message,
	rejection_reason, contract_id, reviewed_at, created_at`

// ApplicationRepository implements application.Repository.
type ApplicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *application.RentalApplication) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rental_applications (`+applicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, a.ID, a.RoomID, a.TenantID, a.LandlordID, a.Status, a.Message,
		a.RejectionReason, a.ContractID, a.ReviewedAt, a.CreatedAt)
	return err
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*application.RentalApplication, error) {
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM rental_applications WHERE id=$1`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) List(ctx context.Context, filter application.Filter, limit, offset int) ([]*application.RentalApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM rental_applications`
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
	query += where + " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*application.RentalApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) Update(ctx context.Context, a *application.RentalApplication) error {
	_, err := r.db.Exec(ctx, `
		UPDATE rental_applications SET status=$1, rejection_reason=$2, contract_id=$3, reviewed_at=$4
		WHERE id=$5
	`, a.Status, a.RejectionReason, a.ContractID, a.ReviewedAt, a.ID)
	return err
}

func (r *ApplicationRepository) Complete(ctx context.Context, id, contractID uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE rental_applications SET status=$1, contract_id=$2, reviewed_at=COALESCE(reviewed_at, $3)
		WHERE id=$4
	`, application.StatusCompleted, contractID, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) RejectOtherPending(ctx context.Context, roomID uuid.UUID, exceptID *uuid.UUID, reason string, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE rental_applications SET status=$1, rejection_reason=$2, reviewed_at=$3
		WHERE room_id=$4 AND status=$5 AND ($6::uuid IS NULL OR id <> $6)
	`, application.StatusRejected, reason, at, roomID, application.StatusPending, exceptID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanApplication(row pgx.Row) (*application.RentalApplication, error) {
	var a application.RentalApplication
	if err := row.Scan(&a.ID, &a.RoomID, &a.TenantID, &a.LandlordID, &a.Status, &a.Message,
		&a.RejectionReason, &a.ContractID, &a.ReviewedAt, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
