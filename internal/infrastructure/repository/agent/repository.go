package agent

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/infrastructure/database/entities"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// Repository reads agent configuration.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID fetches one agent.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	var entity entities.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"agent not found: "+id,
				nil,
				"d2e3f4a5-6767-4d3e-9f4a-b5c6d7e8f9a0",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch agent",
			err,
			"e3f4a5b6-7878-4e4f-0a5b-c6d7e8f9a0b1",
		)
	}

	return &domain.Agent{
		ID:           entity.ID,
		UserID:       entity.UserID,
		Name:         entity.Name,
		Model:        entity.Model,
		SystemPrompt: entity.SystemPrompt,
		Temperature:  entity.Temperature,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}, nil
}
