package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Message represents the persisted canonical message record.
type Message struct {
	ID string `gorm:"type:varchar(40);primaryKey"`

	UserID       *string `gorm:"type:varchar(40);index"`
	AgentID      *string `gorm:"type:varchar(40);index"`
	ConnectionID *string `gorm:"type:varchar(40);index;uniqueIndex:idx_message_dedup,priority:2"`

	ConversationID *string `gorm:"type:varchar(40);index"`
	ChatID         *string `gorm:"type:varchar(128)"`
	ThreadID       *string `gorm:"type:varchar(128)"`

	Channel  string `gorm:"type:varchar(24);not null;index:idx_message_pickup;uniqueIndex:idx_message_dedup,priority:1"`
	Platform string `gorm:"type:varchar(24);not null"`

	Direction string `gorm:"type:varchar(12);not null"`
	Role      string `gorm:"type:varchar(12)"`

	MessageType string         `gorm:"type:varchar(16);not null"`
	ContentText *string        `gorm:"type:text"`
	Content     *string        `gorm:"type:text"`
	ContentJSON datatypes.JSON `gorm:"type:jsonb"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`

	ExternalMessageID      *string `gorm:"type:varchar(128);uniqueIndex:idx_message_dedup,priority:3,where:external_message_id IS NOT NULL"`
	ExternalConversationID *string `gorm:"type:varchar(128)"`
	SenderExternalID       *string `gorm:"type:varchar(128)"`

	Status   string         `gorm:"type:varchar(16);not null;index:idx_message_pickup"`
	Metadata datatypes.JSON `gorm:"type:jsonb"`

	SentAt      *time.Time
	DeliveredAt *time.Time
	ReadAt      *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}
