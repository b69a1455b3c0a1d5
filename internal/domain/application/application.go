package application

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the review state of a rental application.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusCompleted Status = "COMPLETED"
)

// RejectionReasonRoomTaken is applied to every pending application for a
// room when a competing contract activates.
const RejectionReasonRoomTaken = "room has been rented by another tenant"

var (
	ErrNotFound   = errors.New("rental application not found")
	ErrNotPending = errors.New("rental application is no longer pending")
)

// RentalApplication is a tenant's request to lease a room, the usual entry
// point into contract negotiation.
type RentalApplication struct {
	ID              uuid.UUID  `json:"id"`
	RoomID          uuid.UUID  `json:"roomId"`
	TenantID        uuid.UUID  `json:"tenantId"`
	LandlordID      uuid.UUID  `json:"landlordId"`
	Status          Status     `json:"status"`
	Message         string     `json:"message,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	ContractID      *uuid.UUID `json:"contractId,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
