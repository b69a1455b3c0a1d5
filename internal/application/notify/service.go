package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leasehub/leasehub/internal/domain/notification"
)

// Service delivers in-app notifications. Delivery is fire-and-forget: Send
// returns immediately and a failed write is logged, never surfaced, so no
// contract transition can be held hostage by the notification store.
type Service struct {
	repo    notification.Repository
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService creates a notification service.
func NewService(repo notification.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		timeout: 5 * time.Second,
		logger:  logger.With().Str("service", "notify").Logger(),
	}
}

// Send persists a notification asynchronously.
func (s *Service) Send(userID uuid.UUID, title, content string, category notification.Category, relatedID uuid.UUID) {
	n := &notification.Notification{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           title,
		Content:         content,
		Category:        category,
		RelatedEntityID: &relatedID,
		CreatedAt:       time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.repo.Create(ctx, n); err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", userID.String()).
				Str("title", title).
				Msg("failed to deliver notification")
		}
	}()
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}
