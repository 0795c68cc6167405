package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminCode grants the admin role once. Redemption flips IsActive and
// stamps the consumer in the same transaction as the role grant.
type AdminCode struct {
	ID        string     `gorm:"type:uuid;primarykey" json:"id"`
	Code      string     `gorm:"uniqueIndex;not null" json:"code"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	UsedBy    *uint      `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c *AdminCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type UserRole struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_role;not null" json:"user_id"`
	Role      string    `gorm:"uniqueIndex:idx_user_role;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
