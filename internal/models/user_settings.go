package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserSettings holds the per-user preferences document as raw JSON. The
// document is schema-agnostic on purpose: checkInFrequency has changed shape
// across app versions (legacy label string vs structured object) and is only
// normalized at read boundaries, never migrated in place.
type UserSettings struct {
	UserID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Document  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"document"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
