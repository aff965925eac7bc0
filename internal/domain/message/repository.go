package message

import (
	"context"
	"time"
)

// Repository exposes the persistence operations the pipeline needs.
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)

	// ListByStatus returns messages of the given direction and status,
	// oldest first, capped at limit.
	ListByStatus(ctx context.Context, direction Direction, status Status, limit int) ([]*Message, error)

	// ClaimQueued atomically transitions up to limit queued outbound
	// messages to sending and returns them. Concurrent callers never
	// claim the same row.
	ClaimQueued(ctx context.Context, limit int) ([]*Message, error)

	// UpdateStatus transitions id from the expected current status to the
	// target status. Returns ErrInvalidTransition-wrapped conflict when the
	// row is no longer in the expected state.
	UpdateStatus(ctx context.Context, id string, from, to Status) error

	// MarkFailed transitions the message to failed and merges reason into
	// metadata.error without discarding existing metadata keys.
	MarkFailed(ctx context.Context, id string, from Status, reason string) error

	// MarkSent transitions sending -> sent and stamps sent_at.
	MarkSent(ctx context.Context, id string, sentAt time.Time) error

	// Requeue is the deliberate failed -> queued recovery operation.
	Requeue(ctx context.Context, id string) error
}
