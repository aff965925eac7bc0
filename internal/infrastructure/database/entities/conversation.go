package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation represents the persisted conversation thread.
type Conversation struct {
	ID string `gorm:"type:varchar(40);primaryKey"`

	Channel      string `gorm:"type:varchar(24);not null;uniqueIndex:idx_conversation_scope"`
	ChatID       string `gorm:"type:varchar(128);not null;uniqueIndex:idx_conversation_scope"`
	ConnectionID string `gorm:"type:varchar(40);not null;uniqueIndex:idx_conversation_scope"`

	AgentID *string `gorm:"type:varchar(40);index"`
	UserID  *string `gorm:"type:varchar(40);index"`

	Status   string         `gorm:"type:varchar(12);not null"`
	Metadata datatypes.JSON `gorm:"type:jsonb"`

	FirstMessageAt time.Time
	LastMessageAt  time.Time `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
