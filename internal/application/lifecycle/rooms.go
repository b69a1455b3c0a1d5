package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/room"
	"github.com/leasehub/leasehub/internal/domain/storage"
)

// CreateRoomInput carries a landlord's new room listing.
type CreateRoomInput struct {
	LandlordID    uuid.UUID
	RoomNumber    string
	PricePerMonth decimal.Decimal
}

// CreateRoom lists a new room as AVAILABLE.
func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (*room.Room, error) {
	if in.RoomNumber == "" {
		return nil, fmt.Errorf("room number is required")
	}
	if in.PricePerMonth.Sign() <= 0 {
		return nil, fmt.Errorf("price per month must be positive")
	}
	now := s.now()
	r := &room.Room{
		ID:            uuid.New(),
		RoomNumber:    in.RoomNumber,
		LandlordID:    in.LandlordID,
		PricePerMonth: in.PricePerMonth,
		Status:        room.StatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Rooms().Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRoom retrieves a room.
func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	return s.store.Rooms().GetByID(ctx, id)
}

// ListRooms returns rooms, optionally scoped to one landlord.
func (s *Service) ListRooms(ctx context.Context, landlordID *uuid.UUID, limit, offset int) ([]*room.Room, error) {
	return s.store.Rooms().List(ctx, landlordID, limit, offset)
}

// SetRoomMaintenance toggles a room between AVAILABLE and MAINTENANCE. A room
// held by an ongoing lease cannot be toggled: RESERVED and OCCUPIED belong to
// the contract transitions alone.
func (s *Service) SetRoomMaintenance(ctx context.Context, id, landlordID uuid.UUID, maintenance bool) (*room.Room, error) {
	target := room.StatusAvailable
	if maintenance {
		target = room.StatusMaintenance
	}
	var out *room.Room
	err := s.store.ExecTx(ctx, func(tx storage.Tx) error {
		r, err := tx.Rooms().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r.LandlordID != landlordID {
			return contract.ErrUnauthorized
		}
		if r.Status != room.StatusAvailable && r.Status != room.StatusMaintenance {
			return &room.UnavailableError{RoomID: r.ID, Status: r.Status}
		}
		if err := tx.Rooms().UpdateStatus(ctx, r.ID, target); err != nil {
			return err
		}
		r.Status = target
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
