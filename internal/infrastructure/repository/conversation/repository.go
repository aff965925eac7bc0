package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	domain "agenthub/services/channel-api/internal/domain/conversation"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/infrastructure/database/entities"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// Repository persists conversation threads.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record. A duplicate on the scope key is
// surfaced as a conflict so the caller can fetch the winner.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity, err := toEntity(conv)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode conversation metadata",
			err,
			"f2a3b4c5-cccc-4f3a-9b4c-d5e6f7a8b9c0",
		)
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"conversation already exists for scope",
				err,
				"a3b4c5d6-dddd-4a4b-0c5d-e6f7a8b9c0d1",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"b4c5d6e7-eeee-4b5c-1d6e-f7a8b9c0d1e2",
		)
	}

	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByScope fetches the conversation for the (channel, chat_id,
// connection_id) tuple. All three keys scope the lookup.
func (r *Repository) FindByScope(ctx context.Context, key domain.ScopeKey) (*domain.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).
		Where("channel = ? AND chat_id = ? AND connection_id = ?",
			string(key.Channel), key.ChatID, key.ConnectionID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"conversation not found for scope",
				nil,
				"c5d6e7f8-ffff-4c6d-2e7f-a8b9c0d1e2f3",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation by scope",
			err,
			"d6e7f8a9-0000-4d7e-3f8a-b9c0d1e2f3a4",
		)
	}
	return toDomain(&entity)
}

// GetByID fetches a conversation by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"conversation not found: "+id,
				nil,
				"e7f8a9b0-1212-4e8f-4a9b-c0d1e2f3a4b5",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"f8a9b0c1-2323-4f9a-5b0c-d1e2f3a4b5c6",
		)
	}
	return toDomain(&entity)
}

// TouchLastMessage advances last_message_at, never moving it backwards.
func (r *Repository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND last_message_at < ?", id, at).
		Updates(map[string]interface{}{
			"last_message_at": at,
			"updated_at":      time.Now(),
		}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to touch conversation",
			err,
			"a9b0c1d2-3434-4a0b-6c1d-e2f3a4b5c6d7",
		)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value")
}

func toEntity(conv *domain.Conversation) (*entities.Conversation, error) {
	var metadata []byte
	if len(conv.Metadata) > 0 {
		raw, err := json.Marshal(conv.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = raw
	}
	return &entities.Conversation{
		ID:             conv.ID,
		Channel:        string(conv.Channel),
		ChatID:         conv.ChatID,
		ConnectionID:   conv.ConnectionID,
		AgentID:        conv.AgentID,
		UserID:         conv.UserID,
		Status:         string(conv.Status),
		Metadata:       metadata,
		FirstMessageAt: conv.FirstMessageAt,
		LastMessageAt:  conv.LastMessageAt,
	}, nil
}

func toDomain(entity *entities.Conversation) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		ID:             entity.ID,
		Channel:        message.Channel(entity.Channel),
		ChatID:         entity.ChatID,
		ConnectionID:   entity.ConnectionID,
		AgentID:        entity.AgentID,
		UserID:         entity.UserID,
		Status:         domain.Status(entity.Status),
		FirstMessageAt: entity.FirstMessageAt,
		LastMessageAt:  entity.LastMessageAt,
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}
	if len(entity.Metadata) > 0 {
		if err := json.Unmarshal(entity.Metadata, &conv.Metadata); err != nil {
			return nil, err
		}
	}
	return conv, nil
}
