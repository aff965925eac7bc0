package connection

import "context"

// Repository reads connection rows. The pipeline never mutates connections.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Connection, error)

	// FindByWebhookSecret resolves the connection a webhook delivery
	// belongs to using the platform secret token.
	FindByWebhookSecret(ctx context.Context, channel string, secret string) (*Connection, error)

	// FindByAgent resolves the active connection for an agent on a channel.
	FindByAgent(ctx context.Context, channel string, agentID string) (*Connection, error)
}
