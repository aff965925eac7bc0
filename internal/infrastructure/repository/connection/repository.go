package connection

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	domain "agenthub/services/channel-api/internal/domain/connection"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/infrastructure/database/entities"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// Repository reads connection rows. The pipeline never writes here;
// connection lifecycle is owned by the dashboard service.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID fetches one connection.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	var entity entities.Connection
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, r.wrapLookupError(ctx, err, "connection not found: "+id)
	}
	return toDomain(&entity)
}

// FindByWebhookSecret resolves the connection a webhook delivery belongs to.
func (r *Repository) FindByWebhookSecret(ctx context.Context, channel string, secret string) (*domain.Connection, error) {
	var entity entities.Connection
	err := r.db.WithContext(ctx).
		Where("platform = ? AND webhook_secret = ? AND status = ?", channel, secret, string(domain.StatusActive)).
		First(&entity).Error
	if err != nil {
		return nil, r.wrapLookupError(ctx, err, "no connection matches webhook secret")
	}
	return toDomain(&entity)
}

// FindByAgent resolves the active connection for an agent on a channel.
func (r *Repository) FindByAgent(ctx context.Context, channel string, agentID string) (*domain.Connection, error) {
	var entity entities.Connection
	err := r.db.WithContext(ctx).
		Where("platform = ? AND agent_id = ? AND status = ?", channel, agentID, string(domain.StatusActive)).
		First(&entity).Error
	if err != nil {
		return nil, r.wrapLookupError(ctx, err, "no active connection for agent")
	}
	return toDomain(&entity)
}

func (r *Repository) wrapLookupError(ctx context.Context, err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			notFoundMsg,
			nil,
			"b0c1d2e3-4545-4b1c-7d2e-f3a4b5c6d7e8",
		)
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to fetch connection",
		err,
		"c1d2e3f4-5656-4c2d-8e3f-a4b5c6d7e8f9",
	)
}

func toDomain(entity *entities.Connection) (*domain.Connection, error) {
	conn := &domain.Connection{
		ID:                   entity.ID,
		AgentID:              entity.AgentID,
		Platform:             message.Channel(entity.Platform),
		Status:               domain.Status(entity.Status),
		EncryptedCredentials: entity.Credentials,
		WebhookSecret:        entity.WebhookSecret,
		CreatedAt:            entity.CreatedAt,
		UpdatedAt:            entity.UpdatedAt,
	}
	if len(entity.Config) > 0 {
		if err := json.Unmarshal(entity.Config, &conn.Config); err != nil {
			return nil, err
		}
	}
	return conn, nil
}
