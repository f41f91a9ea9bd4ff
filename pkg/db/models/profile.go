package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// Profile mirrors the identity provider subject inside the marketplace.
// The ID is the provider's subject, not a locally generated value.
type Profile struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	FullName  *string        `gorm:"column:full_name"`
	Phone     *string        `gorm:"column:phone"`
	AvatarURL *string        `gorm:"column:avatar_url"`
	Role      enums.UserRole `gorm:"column:role;type:user_role;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
