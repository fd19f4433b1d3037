package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// User is a marketplace account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"not null" json:"firstName"`
	LastName  string    `gorm:"not null" json:"lastName"`
	Phone     *string   `json:"phone"`
	IsHost    bool      `gorm:"not null;default:false" json:"isHost"`
	Role      string    `gorm:"type:varchar(16);not null;default:guest" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleGuest
	}
	return
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
