package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/leasehub/leasehub/internal/domain/room"
)

const roomColumns = `id, room_number, landlord_id, price_per_month, status, created_at, updated_at`

// RoomRepository implements room.Repository.
type RoomRepository struct {
	db DBTX
}

func NewRoomRepository(db DBTX) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, rm *room.Room) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rooms (`+roomColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rm.ID, rm.RoomNumber, rm.LandlordID, rm.PricePerMonth, rm.Status, rm.CreatedAt, rm.UpdatedAt)
	return err
}

func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id)
	return scanRoom(row)
}

func (r *RoomRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1 FOR UPDATE`, id)
	return scanRoom(row)
}

func (r *RoomRepository) List(ctx context.Context, landlordID *uuid.UUID, limit, offset int) ([]*room.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms`
	args := []any{}
	if landlordID != nil {
		query += ` WHERE landlord_id=$1`
		args = append(args, *landlordID)
	}
	if len(args) == 0 {
		query += ` ORDER BY room_number ASC LIMIT $1 OFFSET $2`
	} else {
		query += ` ORDER BY room_number ASC LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*room.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *RoomRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status room.Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE rooms SET status=$1, updated_at=NOW() WHERE id=$2
	`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return room.ErrNotFound
	}
	return nil
}

func scanRoom(row pgx.Row) (*room.Room, error) {
	var rm room.Room
	if err := row.Scan(&rm.ID, &rm.RoomNumber, &rm.LandlordID, &rm.PricePerMonth, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, room.ErrNotFound
		}
		return nil, err
	}
	return &rm, nil
}
