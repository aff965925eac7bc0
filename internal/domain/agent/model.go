package agent

import (
	"context"
	"time"
)

// Agent is the minimal slice of agent configuration the pipeline reads.
// Agent management is owned by the dashboard service.
type Agent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	Temperature  float64   `json:"temperature"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository reads agent configuration.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Agent, error)
}
