package entities

import "time"

// Agent is the read-side projection of agent configuration owned by the
// dashboard service.
type Agent struct {
	ID           string  `gorm:"type:varchar(40);primaryKey"`
	UserID       string  `gorm:"type:varchar(40);index"`
	Name         string  `gorm:"type:varchar(128)"`
	Model        string  `gorm:"type:varchar(128)"`
	SystemPrompt string  `gorm:"type:text"`
	Temperature  float64 `gorm:"default:0.7"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Agent) TableName() string {
	return "agents"
}
