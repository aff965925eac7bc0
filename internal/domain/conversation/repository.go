package conversation

import (
	"context"
	"time"
)

// Repository persists conversation threads.
type Repository interface {
	// Create inserts the conversation. A duplicate on the scope key returns
	// an ErrorTypeConflict platform error so callers can re-fetch.
	Create(ctx context.Context, conv *Conversation) error

	// FindByScope fetches the conversation for the scope key, or a
	// not-found error.
	FindByScope(ctx context.Context, key ScopeKey) (*Conversation, error)

	GetByID(ctx context.Context, id string) (*Conversation, error)

	// TouchLastMessage advances last_message_at.
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
}
