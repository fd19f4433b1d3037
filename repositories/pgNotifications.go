package repositories

import (
	"context"

	"rental-server/db"
	"rental-server/entities"

	"gorm.io/gorm"
)

type notificationPgRepository struct {
	db db.Database
}

func NewNotificationPgRepository(database db.Database) NotificationRepository {
	return &notificationPgRepository{db: database}
}

func (r *notificationPgRepository) Create(ctx context.Context, n *entities.Notification) error {
	return r.db.GetDB().WithContext(ctx).Create(n).Error
}

func (r *notificationPgRepository) GetByID(ctx context.Context, id string) (*entities.Notification, error) {
	var n entities.Notification
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// GetByUserID lists newest first.
func (r *notificationPgRepository) GetByUserID(ctx context.Context, userID string) ([]entities.Notification, error) {
	var ns []entities.Notification
	err := r.db.GetDB().WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&ns).Error
	return ns, err
}

func (r *notificationPgRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// sqlite and postgres both count matched rows here, so zero means absent
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationPgRepository) Delete(ctx context.Context, id string) error {
	res := r.db.GetDB().WithContext(ctx).Where("id = ?", id).Delete(&entities.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
