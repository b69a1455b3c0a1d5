package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/leasehub/leasehub/internal/domain/application"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
	"github.com/leasehub/leasehub/internal/domain/room"
	"github.com/leasehub/leasehub/internal/domain/storage"
)

// CreateApplicationInput carries a tenant's request to lease a room.
type CreateApplicationInput struct {
	RoomID   uuid.UUID
	TenantID uuid.UUID
	Message  string
}

// CreateApplication files a PENDING application for an available room and
// notifies the landlord.
func (s *Service) CreateApplication(ctx context.Context, in CreateApplicationInput) (*application.RentalApplication, error) {
	now := s.now()
	a := &application.RentalApplication{
		ID:        uuid.New(),
		RoomID:    in.RoomID,
		TenantID:  in.TenantID,
		Status:    application.StatusPending,
		Message:   in.Message,
		CreatedAt: now,
	}
	err := s.store.ExecTx(ctx, func(tx storage.Tx) error {
		r, err := tx.Rooms().GetForUpdate(ctx, in.RoomID)
		if err != nil {
			return err
		}
		if r.Status != room.StatusAvailable {
			return &room.UnavailableError{RoomID: r.ID, Status: r.Status}
		}
		if r.LandlordID == in.TenantID {
			return fmt.Errorf("landlord cannot apply for their own room")
		}
		a.LandlordID = r.LandlordID
		return tx.Applications().Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", a.ID.String()).Str("room_id", in.RoomID.String()).Msg("application created")
	s.notify(a.LandlordID, "New rental application",
		"A tenant has applied for one of your rooms.",
		notification.CategoryApplication, a.ID)
	return a, nil
}

// GetApplication retrieves an application; only its tenant or landlord may
// read it.
func (s *Service) GetApplication(ctx context.Context, id, actorID uuid.UUID) (*application.RentalApplication, error) {
	a, err := s.store.Applications().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.TenantID != actorID && a.LandlordID != actorID {
		return nil, contract.ErrUnauthorized
	}
	return a, nil
}

// ListApplications returns the actor's applications, on either side.
func (s *Service) ListApplications(ctx context.Context, filter application.Filter, limit, offset int) ([]*application.RentalApplication, error) {
	return s.store.Applications().List(ctx, filter, limit, offset)
}

// ApproveApplication marks a pending application APPROVED. Landlord only.
func (s *Service) ApproveApplication(ctx context.Context, id, landlordID uuid.UUID) (*application.RentalApplication, error) {
	a, err := s.reviewApplication(ctx, id, landlordID, application.StatusApproved, nil)
	if err != nil {
		return nil, err
	}
	s.notify(a.TenantID, "Application approved",
		"Your rental application has been approved. The landlord will send you a contract.",
		notification.CategoryApplication, a.ID)
	return a, nil
}

// RejectApplication marks a pending application REJECTED. Landlord only.
func (s *Service) RejectApplication(ctx context.Context, id, landlordID uuid.UUID, reason string) (*application.RentalApplication, error) {
	a, err := s.reviewApplication(ctx, id, landlordID, application.StatusRejected, &reason)
	if err != nil {
		return nil, err
	}
	s.notify(a.TenantID, "Application rejected",
		"Your rental application has been rejected.",
		notification.CategoryApplication, a.ID)
	return a, nil
}

// WithdrawApplication lets the applying tenant pull a pending application.
func (s *Service) WithdrawApplication(ctx context.Context, id, tenantID uuid.UUID) (*application.RentalApplication, error) {
	var out *application.RentalApplication
	err := s.store.ExecTx(ctx, func(tx storage.Tx) error {
		a, err := tx.Applications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.TenantID != tenantID {
			return contract.ErrUnauthorized
		}
		if a.Status != application.StatusPending {
			return application.ErrNotPending
		}
		a.Status = application.StatusWithdrawn
		if err := tx.Applications().Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) reviewApplication(ctx context.Context, id, landlordID uuid.UUID, to application.Status, reason *string) (*application.RentalApplication, error) {
	now := s.now()
	var out *application.RentalApplication
	err := s.store.ExecTx(ctx, func(tx storage.Tx) error {
		a, err := tx.Applications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.LandlordID != landlordID {
			return contract.ErrUnauthorized
		}
		if a.Status != application.StatusPending {
			return application.ErrNotPending
		}
		a.Status = to
		a.RejectionReason = reason
		a.ReviewedAt = &now
		if err := tx.Applications().Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", id.String()).Str("status", string(to)).Msg("application reviewed")
	return out, nil
}
