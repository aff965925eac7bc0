package message

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	domain "agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/infrastructure/database/entities"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// Repository handles message persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the message record.
func (r *Repository) Create(ctx context.Context, msg *domain.Message) error {
	entity, err := toEntity(msg)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode message payload",
			err,
			"a1b2c3d4-1111-4a2b-8c3d-e4f5a6b7c8d9",
		)
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create message",
			err,
			"b2c3d4e5-2222-4b3c-9d4e-f5a6b7c8d9e0",
		)
	}
	msg.CreatedAt = entity.CreatedAt
	msg.UpdatedAt = entity.UpdatedAt
	return nil
}

// GetByID fetches one message.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var entity entities.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"message not found: "+id,
				nil,
				"c3d4e5f6-3333-4c4d-0e5f-a6b7c8d9e0f1",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get message by id",
			err,
			"d4e5f6a7-4444-4d5e-1f6a-b7c8d9e0f1a2",
		)
	}
	return toDomain(&entity)
}

// ListByStatus returns messages of the given direction and status, oldest
// first, capped at limit.
func (r *Repository) ListByStatus(ctx context.Context, direction domain.Direction, status domain.Status, limit int) ([]*domain.Message, error) {
	var rows []entities.Message
	err := r.db.WithContext(ctx).
		Where("direction = ? AND status = ?", string(direction), string(status)).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages by status",
			err,
			"e5f6a7b8-5555-4e6f-2a7b-c8d9e0f1a2b3",
		)
	}
	return toDomainSlice(rows)
}

// ClaimQueued atomically moves up to limit queued outbound messages to
// sending and returns them. FOR UPDATE SKIP LOCKED plus the status-guarded
// update means two overlapping dispatcher runs never claim the same row.
func (r *Repository) ClaimQueued(ctx context.Context, limit int) ([]*domain.Message, error) {
	var rows []entities.Message

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Raw(`SELECT * FROM messages
				WHERE direction = ? AND status = ?
				ORDER BY created_at ASC
				LIMIT ?
				FOR UPDATE SKIP LOCKED`,
				string(domain.DirectionOutbound), string(domain.StatusQueued), limit).
			Scan(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]string, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}

		now := time.Now()
		result := tx.Model(&entities.Message{}).
			Where("id IN ? AND status = ?", ids, string(domain.StatusQueued)).
			Updates(map[string]interface{}{
				"status":     string(domain.StatusSending),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		for i := range rows {
			rows[i].Status = string(domain.StatusSending)
			rows[i].UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to claim queued messages",
			err,
			"f6a7b8c9-6666-4f7a-3b8c-d9e0f1a2b3c4",
		)
	}
	return toDomainSlice(rows)
}

// UpdateStatus transitions id from the expected status to the target status.
// The guard enforces monotonicity: a row that moved on since the read is a
// conflict, never an overwrite.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	if !from.CanTransitionTo(to) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeValidation,
			"invalid status transition "+from.String()+" -> "+to.String(),
			domain.ErrInvalidTransition,
			"a7b8c9d0-7777-4a8b-4c9d-e0f1a2b3c4d5",
		)
	}
	return r.guardedUpdate(ctx, id, from, map[string]interface{}{
		"status":     to.String(),
		"updated_at": time.Now(),
	})
}

// MarkFailed transitions the message to failed and merges the failure into
// metadata. The jsonb concatenation keeps the merge inside the guarded
// update, so existing keys survive without a separate read.
func (r *Repository) MarkFailed(ctx context.Context, id string, from domain.Status, reason string) error {
	patch, err := json.Marshal(map[string]any{
		"error":     reason,
		"failed_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode failure metadata",
			err,
			"c9d0e1f2-9999-4c0d-6e1f-a2b3c4d5e6f7",
		)
	}

	return r.guardedUpdate(ctx, id, from, map[string]interface{}{
		"status":     domain.StatusFailed.String(),
		"metadata":   gorm.Expr("COALESCE(metadata, '{}'::jsonb) || ?::jsonb", string(patch)),
		"updated_at": time.Now(),
	})
}

// MarkSent transitions sending -> sent and stamps sent_at.
func (r *Repository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.guardedUpdate(ctx, id, domain.StatusSending, map[string]interface{}{
		"status":     domain.StatusSent.String(),
		"sent_at":    sentAt,
		"updated_at": time.Now(),
	})
}

// Requeue is the deliberate failed -> queued recovery operation.
func (r *Repository) Requeue(ctx context.Context, id string) error {
	return r.guardedUpdate(ctx, id, domain.StatusFailed, map[string]interface{}{
		"status":     domain.StatusQueued.String(),
		"updated_at": time.Now(),
	})
}

func (r *Repository) guardedUpdate(ctx context.Context, id string, from domain.Status, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ? AND status = ?", id, from.String()).
		Updates(updates)

	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update message status",
			result.Error,
			"d0e1f2a3-aaaa-4d1e-7f2a-b3c4d5e6f7a8",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeConflict,
			"message "+id+" is no longer in status "+from.String(),
			nil,
			"e1f2a3b4-bbbb-4e2f-8a3b-c4d5e6f7a8b9",
		)
	}
	return nil
}

func toEntity(msg *domain.Message) (*entities.Message, error) {
	var attachments []byte
	if len(msg.Attachments) > 0 {
		raw, err := json.Marshal(msg.Attachments)
		if err != nil {
			return nil, err
		}
		attachments = raw
	}

	var metadata []byte
	if len(msg.Metadata) > 0 {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = raw
	}

	return &entities.Message{
		ID:                     msg.ID,
		UserID:                 msg.UserID,
		AgentID:                msg.AgentID,
		ConnectionID:           msg.ConnectionID,
		ConversationID:         msg.ConversationID,
		ChatID:                 msg.ChatID,
		ThreadID:               msg.ThreadID,
		Channel:                string(msg.Channel),
		Platform:               string(msg.Channel), // channel is authoritative
		Direction:              string(msg.Direction),
		Role:                   string(msg.Role),
		MessageType:            string(msg.Type),
		ContentText:            msg.ContentText,
		Content:                msg.Content,
		ContentJSON:            []byte(msg.ContentJSON),
		Attachments:            attachments,
		ExternalMessageID:      msg.ExternalMessageID,
		ExternalConversationID: msg.ExternalConversationID,
		SenderExternalID:       msg.SenderExternalID,
		Status:                 string(msg.Status),
		Metadata:               metadata,
		SentAt:                 msg.SentAt,
		DeliveredAt:            msg.DeliveredAt,
		ReadAt:                 msg.ReadAt,
		CreatedAt:              msg.CreatedAt,
	}, nil
}

func toDomain(entity *entities.Message) (*domain.Message, error) {
	msg := &domain.Message{
		ID:                     entity.ID,
		UserID:                 entity.UserID,
		AgentID:                entity.AgentID,
		ConnectionID:           entity.ConnectionID,
		ConversationID:         entity.ConversationID,
		ChatID:                 entity.ChatID,
		ThreadID:               entity.ThreadID,
		Channel:                domain.Channel(entity.Channel),
		Platform:               domain.Channel(entity.Platform),
		Direction:              domain.Direction(entity.Direction),
		Role:                   domain.Role(entity.Role),
		Type:                   domain.Type(entity.MessageType),
		ContentText:            entity.ContentText,
		Content:                entity.Content,
		ContentJSON:            json.RawMessage(entity.ContentJSON),
		ExternalMessageID:      entity.ExternalMessageID,
		ExternalConversationID: entity.ExternalConversationID,
		SenderExternalID:       entity.SenderExternalID,
		Status:                 domain.Status(entity.Status),
		SentAt:                 entity.SentAt,
		DeliveredAt:            entity.DeliveredAt,
		ReadAt:                 entity.ReadAt,
		CreatedAt:              entity.CreatedAt,
		UpdatedAt:              entity.UpdatedAt,
	}

	// Legacy rows may carry only the platform alias.
	if msg.Channel == "" && msg.Platform != "" {
		msg.Channel = msg.Platform
	}

	if len(entity.Attachments) > 0 {
		if err := json.Unmarshal(entity.Attachments, &msg.Attachments); err != nil {
			return nil, err
		}
	}
	if len(entity.Metadata) > 0 {
		if err := json.Unmarshal(entity.Metadata, &msg.Metadata); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func toDomainSlice(rows []entities.Message) ([]*domain.Message, error) {
	out := make([]*domain.Message, 0, len(rows))
	for i := range rows {
		msg, err := toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}
