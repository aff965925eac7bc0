package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/domain/channel"
	"agenthub/services/channel-api/internal/domain/connection"
	"agenthub/services/channel-api/internal/domain/conversation"
	"agenthub/services/channel-api/internal/domain/message"
)

// ConversationResolver is the slice of the conversation service the ingest
// path depends on.
type ConversationResolver interface {
	ResolveOrCreate(ctx context.Context, key conversation.ScopeKey, attrs conversation.Attributes) (*conversation.Conversation, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// Hints carries the request-level identity material used to resolve the
// connection: the path agent id and the platform's webhook secret header.
type Hints struct {
	AgentID       string
	WebhookSecret string
}

// Result reports what one webhook delivery produced.
type Result struct {
	Stored         bool
	MessageID      string
	ConversationID string
}

// Service turns one raw platform delivery into persisted state.
type Service struct {
	adapters      channel.Registry
	messages      message.Repository
	conversations ConversationResolver
	connections   connection.Repository
	log           zerolog.Logger
}

func NewService(
	adapters channel.Registry,
	messages message.Repository,
	conversations ConversationResolver,
	connections connection.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		adapters:      adapters,
		messages:      messages,
		conversations: conversations,
		connections:   connections,
		log:           log.With().Str("component", "ingest-service").Logger(),
	}
}

// Ingest maps and persists one inbound delivery. Incomplete linkage is not a
// rejection: messages arriving before a connection is registered are stored
// with null context for later reconciliation. Deliveries carrying no
// recognizable message unit resolve to a stored=false no-op.
func (s *Service) Ingest(ctx context.Context, ch message.Channel, raw []byte, hints Hints) (*Result, error) {
	adapter, ok := s.adapters.Lookup(ch, ch)
	if !ok {
		return nil, channel.NotImplementedError(ch)
	}

	inCtx := s.resolveContext(ctx, ch, hints)

	msg, err := adapter.MapIncoming(raw, inCtx)
	if err != nil {
		return nil, err
	}

	if isEmptyDelivery(msg) {
		s.log.Debug().Str("channel", string(ch)).Msg("delivery carried no message unit, acknowledging")
		return &Result{Stored: false}, nil
	}

	result := &Result{Stored: true}

	if msg.ChatID != nil && msg.ConnectionID != nil {
		conv, err := s.conversations.ResolveOrCreate(ctx, conversation.ScopeKey{
			Channel:      ch,
			ChatID:       *msg.ChatID,
			ConnectionID: *msg.ConnectionID,
		}, conversation.Attributes{
			AgentID: msg.AgentID,
			UserID:  msg.UserID,
		})
		if err != nil {
			return nil, err
		}
		msg.ConversationID = &conv.ID
		result.ConversationID = conv.ID
	}

	msg.SyncAliases()
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	result.MessageID = msg.ID

	if msg.ConversationID != nil {
		if err := s.conversations.Touch(ctx, *msg.ConversationID, msg.CreatedAt); err != nil {
			// The message is already stored; a stale last_message_at is
			// recoverable and must not fail the webhook.
			s.log.Warn().Err(err).Str("conversation_id", *msg.ConversationID).Msg("touch conversation failed")
		}
	}

	return result, nil
}

// resolveContext looks up the connection for the delivery. Unresolved
// linkage logs and proceeds with null context.
func (s *Service) resolveContext(ctx context.Context, ch message.Channel, hints Hints) channel.IncomingContext {
	var conn *connection.Connection
	var err error

	switch {
	case hints.WebhookSecret != "":
		conn, err = s.connections.FindByWebhookSecret(ctx, string(ch), hints.WebhookSecret)
	case hints.AgentID != "":
		conn, err = s.connections.FindByAgent(ctx, string(ch), hints.AgentID)
	default:
		return channel.IncomingContext{}
	}

	if err != nil || conn == nil {
		s.log.Warn().
			Str("channel", string(ch)).
			Str("agent_hint", hints.AgentID).
			Msg("connection unresolved, storing with null context")
		return channel.IncomingContext{}
	}

	return channel.IncomingContext{
		AgentID:      &conn.AgentID,
		ConnectionID: &conn.ID,
	}
}

// isEmptyDelivery reports whether the adapter found nothing to store: an
// event-typed message with no platform identifiers is a service ping or an
// update kind we do not track.
func isEmptyDelivery(msg *message.Message) bool {
	return msg.Type == message.TypeEvent &&
		msg.ExternalMessageID == nil &&
		msg.ChatID == nil
}
