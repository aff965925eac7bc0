package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Connection represents a tenant's persisted channel integration. The
// credentials column holds only AES-GCM sealed material; plaintext settings
// live in config.
type Connection struct {
	ID       string `gorm:"type:varchar(40);primaryKey"`
	AgentID  string `gorm:"type:varchar(40);not null;index"`
	Platform string `gorm:"type:varchar(24);not null;index"`
	Status   string `gorm:"type:varchar(12);not null"`

	Config      datatypes.JSON `gorm:"type:jsonb"`
	Credentials string         `gorm:"type:text"`

	WebhookSecret *string `gorm:"type:varchar(128);index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Connection) TableName() string {
	return "connections"
}
