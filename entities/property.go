package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Property struct {
	ID            string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title         string                      `gorm:"not null" json:"title"`
	Slug          string                      `gorm:"index" json:"slug"`
	Description   string                      `gorm:"type:text;not null" json:"description"`
	Location      string                      `gorm:"not null" json:"location"`
	Latitude      *string                     `json:"latitude"`
	Longitude     *string                     `json:"longitude"`
	PricePerNight string                      `gorm:"type:varchar(32);not null" json:"pricePerNight"`
	MaxGuests     int                         `gorm:"not null" json:"maxGuests"`
	Bedrooms      int                         `gorm:"not null" json:"bedrooms"`
	Bathrooms     int                         `gorm:"not null" json:"bathrooms"`
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	HostID        string                      `gorm:"type:varchar(36);index;not null" json:"hostId"`
	Rating        string                      `gorm:"type:varchar(8);not null;default:'0'" json:"rating"`
	IsActive      bool                        `gorm:"index;not null;default:true" json:"isActive"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Rating == "" {
		p.Rating = "0"
	}
	if p.Amenities == nil {
		p.Amenities = datatypes.JSONSlice[string]{}
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	p.Slug = slug.Make(p.Title)
	return
}
