package conversation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/utils/platformerrors"
	"agenthub/services/channel-api/utils/recordid"
)

// Attributes carries the optional fields applied when a new thread is created.
type Attributes struct {
	AgentID  *string
	UserID   *string
	Metadata map[string]any
}

// Service resolves conversation threads for inbound messages.
type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "conversation-service").Logger(),
		now:  time.Now,
	}
}

// ResolveOrCreate finds the open conversation for the scope key, creating it
// on first contact. Concurrent webhook deliveries for the same new chat race
// on the insert; the loser observes a conflict and fetches the winner's row.
func (s *Service) ResolveOrCreate(ctx context.Context, key ScopeKey, attrs Attributes) (*Conversation, error) {
	existing, err := s.repo.FindByScope(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !platformerrors.IsType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}

	now := s.now()
	conv := &Conversation{
		ID:             recordid.NewConversationID(),
		Channel:        key.Channel,
		ChatID:         key.ChatID,
		ConnectionID:   key.ConnectionID,
		AgentID:        attrs.AgentID,
		UserID:         attrs.UserID,
		Status:         StatusOpen,
		Metadata:       attrs.Metadata,
		FirstMessageAt: now,
		LastMessageAt:  now,
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		if platformerrors.IsType(err, platformerrors.ErrorTypeConflict) {
			s.log.Debug().
				Str("channel", string(key.Channel)).
				Str("chat_id", key.ChatID).
				Msg("conversation insert lost race, using existing thread")
			return s.repo.FindByScope(ctx, key)
		}
		return nil, err
	}
	return conv, nil
}

// Touch advances last_message_at for the thread.
func (s *Service) Touch(ctx context.Context, id string, at time.Time) error {
	return s.repo.TouchLastMessage(ctx, id, at)
}
