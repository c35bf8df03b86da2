package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Friend is a single contact record owned by a user. LastSeen is nil for
// friends that have never been marked as seen.
type Friend struct {
	ID              uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	FirstName       string                      `gorm:"size:100;not null" json:"first_name"`
	LastName        string                      `gorm:"size:100" json:"last_name,omitempty"`
	Email           string                      `gorm:"size:255" json:"email,omitempty"`
	Phone           string                      `gorm:"size:50" json:"phone,omitempty"`
	Birthday        string                      `gorm:"size:32" json:"birthday,omitempty"`
	LastSeen        *time.Time                  `json:"last_seen,omitempty"`
	Notes           string                      `gorm:"type:text" json:"notes,omitempty"`
	FavouriteThings datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"favourite_things"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	DeletedAt       gorm.DeletedAt              `gorm:"index" json:"-"`
}
