package usecases

import (
	"context"

	"rental-server/entities"
	"rental-server/events"
	"rental-server/repositories"
)

type NotificationUseCase struct {
	NotificationRepo repositories.NotificationRepository
	Events           events.Publisher
}

func NewNotificationUseCase(notificationRepo repositories.NotificationRepository, pub events.Publisher) *NotificationUseCase {
	return &NotificationUseCase{NotificationRepo: notificationRepo, Events: pub}
}

// Create stores a notification for userID and announces it for live delivery.
func (uc *NotificationUseCase) Create(ctx context.Context, userID, title, message, kind string) (*entities.Notification, error) {
	if userID == "" || title == "" || message == "" {
		return nil, fail(ErrValidation, "userId, title and message are required")
	}
	if kind == "" {
		kind = entities.NotificationOther
	}
	if !entities.ValidNotificationType(kind) {
		return nil, fail(ErrValidation, "Invalid notification type: %s", kind)
	}

	n := &entities.Notification{UserID: userID, Title: title, Message: message, Type: kind}
	if err := uc.NotificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	uc.Events.Publish(ctx, events.Event{
		Key:    events.NotificationCreated,
		UserID: userID,
		Data:   events.NotificationPayload{Notification: *n},
	})
	return n, nil
}

// ListByUser returns newest first.
func (uc *NotificationUseCase) ListByUser(ctx context.Context, userID string) ([]entities.Notification, error) {
	list, err := uc.NotificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entities.Notification{}
	}
	return list, nil
}

// MarkRead succeeds again on an already read notification.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, id, userID string) error {
	n, err := uc.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	return notFound(uc.NotificationRepo.MarkRead(ctx, id), "Notification not found")
}

func (uc *NotificationUseCase) Delete(ctx context.Context, id, userID string) error {
	if _, err := uc.owned(ctx, id, userID); err != nil {
		return err
	}
	return notFound(uc.NotificationRepo.Delete(ctx, id), "Notification not found")
}

func (uc *NotificationUseCase) owned(ctx context.Context, id, userID string) (*entities.Notification, error) {
	n, err := uc.NotificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Notification not found")
	}
	if n.UserID != userID {
		return nil, fail(ErrNotFound, "Notification not found")
	}
	return n, nil
}
