package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Pusher delivers a notification payload to a connected user's personal
// channel. Implemented by the gateway hub. Push to an offline user is a
// no-op; Pusher never returns an error and never blocks.
type Pusher interface {
	PushNotification(userID string, payload interface{})
}

type Service struct {
	repo   Repository
	pusher Pusher
}

func NewService(repo Repository, pusher Pusher) *Service {
	return &Service{repo: repo, pusher: pusher}
}

// Notify persists the notification and then pushes it to the recipient's
// personal channel. The push happens strictly after the durable write so a
// delivered event always matches what a subsequent REST fetch returns.
func (s *Service) Notify(ctx context.Context, n *Notification) error {
	if n.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Type == "" {
		n.Type = TypeSystem
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.pusher.PushNotification(n.UserID.String(), n)
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead flips the read flag on one of the user's notifications.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead flips the read flag on all of the user's notifications.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
