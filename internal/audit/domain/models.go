package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog records an operator action against a billing target.
// IDs are ULIDs so the trail sorts by time without a secondary index.
type AuditLog struct {
	ID           string            `gorm:"primaryKey;type:text" json:"id"`
	RestaurantID snowflake.ID      `gorm:"not null;index" json:"restaurant_id"`
	ActorType    string            `gorm:"type:text;not null" json:"actor_type"`
	ActorID      string            `gorm:"type:text" json:"actor_id,omitempty"`
	Action       string            `gorm:"type:text;not null;index" json:"action"`
	TargetType   string            `gorm:"type:text;not null" json:"target_type"`
	TargetID     string            `gorm:"type:text" json:"target_id,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
