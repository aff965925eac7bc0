package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"agenthub/services/channel-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Message{},
		&entities.Conversation{},
		&entities.Connection{},
		&entities.Agent{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied channel pipeline migrations")
	return nil
}
