package repositories

import (
	"context"

	"rental-server/db"
	"rental-server/entities"
)

type propertyPgRepository struct {
	db db.Database
}

func NewPropertyPgRepository(database db.Database) PropertyRepository {
	return &propertyPgRepository{db: database}
}

func (r *propertyPgRepository) Create(ctx context.Context, property *entities.Property) error {
	return r.db.GetDB().WithContext(ctx).Create(property).Error
}

func (r *propertyPgRepository) GetByID(ctx context.Context, id string) (*entities.Property, error) {
	var property entities.Property
	if err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// ListActive pages through active listings in insertion order.
func (r *propertyPgRepository) ListActive(ctx context.Context, limit, offset int) ([]entities.Property, error) {
	var properties []entities.Property
	err := r.db.GetDB().WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&properties).Error
	return properties, err
}

// Update applies column -> value pairs and returns the fresh row.
func (r *propertyPgRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entities.Property, error) {
	property, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := r.db.GetDB().WithContext(ctx).Model(property).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}
