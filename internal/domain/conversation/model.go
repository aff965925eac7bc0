package conversation

import (
	"time"

	"agenthub/services/channel-api/internal/domain/message"
)

// Status represents the lifecycle state of a conversation thread.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// ScopeKey uniquely identifies a conversation thread. All three fields are
// required for lookups to avoid cross-connection collisions.
type ScopeKey struct {
	Channel      message.Channel
	ChatID       string
	ConnectionID string
}

// Conversation scopes messages from one chat identity on one channel/connection.
type Conversation struct {
	ID string `json:"id"`

	Channel      message.Channel `json:"channel"`
	ChatID       string          `json:"chat_id"`
	ConnectionID string          `json:"connection_id"`
	AgentID      *string         `json:"agent_id,omitempty"`
	UserID       *string         `json:"user_id,omitempty"`

	Status         Status         `json:"status"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	FirstMessageAt time.Time      `json:"first_message_at"`
	LastMessageAt  time.Time      `json:"last_message_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
