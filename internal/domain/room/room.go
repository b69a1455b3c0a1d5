package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the availability of a room.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusReserved    Status = "RESERVED"
	StatusOccupied    Status = "OCCUPIED"
	StatusMaintenance Status = "MAINTENANCE"
)

// rank orders statuses by occupancy strength: a room's status must always
// reflect the strongest concurrent contract state.
var rank = map[Status]int{
	StatusAvailable:   0,
	StatusReserved:    1,
	StatusOccupied:    2,
	StatusMaintenance: 3,
}

// Valid reports whether s is a defined room status.
func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok
}

// Dominates reports whether s is at least as strong as other under the
// OCCUPIED > RESERVED > AVAILABLE ordering.
func (s Status) Dominates(other Status) bool {
	return rank[s] >= rank[other]
}

// ErrNotFound is returned when a room does not exist.
var ErrNotFound = errors.New("room not found")

// UnavailableError reports a soft-lock conflict: the room's current status
// does not admit the attempted reservation or occupation.
type UnavailableError struct {
	RoomID uuid.UUID
	Status Status
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("room %s is not available (status %s)", e.RoomID, e.Status)
}

// Room is a rentable unit.
type Room struct {
	ID            uuid.UUID       `json:"id"`
	RoomNumber    string          `json:"roomNumber"`
	LandlordID    uuid.UUID       `json:"landlordId"`
	PricePerMonth decimal.Decimal `json:"pricePerMonth"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
