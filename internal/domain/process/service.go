package process

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/domain/llm"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/infrastructure/metrics"
	"agenthub/services/channel-api/utils/recordid"
)

// ConversationToucher is the slice of the conversation service the
// processor depends on.
type ConversationToucher interface {
	Touch(ctx context.Context, id string, at time.Time) error
}

// Result summarizes one processor run.
type Result struct {
	Processed int
	Failed    int
}

// Service pulls received inbound messages and turns them into queued
// outbound replies. Generation is never retried automatically: a failed
// generation marks the inbound message failed and leaves recovery to
// operators, avoiding duplicate LLM spend.
type Service struct {
	messages      message.Repository
	conversations ConversationToucher
	agents        agent.Repository
	generator     llm.Provider
	batchSize     int
	timeout       time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

func NewService(
	messages message.Repository,
	conversations ConversationToucher,
	agents agent.Repository,
	generator llm.Provider,
	batchSize int,
	timeout time.Duration,
	log zerolog.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Service{
		messages:      messages,
		conversations: conversations,
		agents:        agents,
		generator:     generator,
		batchSize:     batchSize,
		timeout:       timeout,
		log:           log.With().Str("component", "inbound-processor").Logger(),
		now:           time.Now,
	}
}

// Run executes one batch pass. Each message is handled independently: one
// failure never blocks or rolls back siblings.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	batch, err := s.messages.ListByStatus(ctx, message.DirectionInbound, message.StatusReceived, s.batchSize)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, msg := range batch {
		if err := s.processOne(ctx, msg); err != nil {
			result.Failed++
			metrics.RecordProcessed("failed")
			s.log.Error().Err(err).Str("message_id", msg.ID).Msg("inbound message failed")
			continue
		}
		result.Processed++
		metrics.RecordProcessed("processed")
	}
	return result, nil
}

func (s *Service) processOne(ctx context.Context, msg *message.Message) error {
	// Missing linkage cannot self-heal: fail terminally without spending a
	// generation call.
	if msg.AgentID == nil {
		return s.fail(ctx, msg, "missing agent linkage")
	}
	if msg.ConversationID == nil {
		return s.fail(ctx, msg, "missing conversation linkage")
	}

	ag, err := s.agents.GetByID(ctx, *msg.AgentID)
	if err != nil {
		return s.fail(ctx, msg, "agent lookup failed: "+err.Error())
	}

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	genStart := s.now()
	reply, err := s.generator.GenerateReply(genCtx, ag, []llm.ChatMessage{
		{Role: "user", Content: msg.Text()},
	})
	metrics.GenerationDuration.Observe(time.Since(genStart).Seconds())
	if err != nil {
		return s.fail(ctx, msg, "reply generation failed: "+err.Error())
	}

	outbound := s.buildReply(msg, ag, reply)
	if err := s.messages.Create(ctx, outbound); err != nil {
		return s.fail(ctx, msg, "queue outbound reply failed: "+err.Error())
	}

	if err := s.conversations.Touch(ctx, *msg.ConversationID, outbound.CreatedAt); err != nil {
		// The reply is already queued; a stale last_message_at is
		// recoverable and must not fail the message.
		s.log.Warn().Err(err).Str("conversation_id", *msg.ConversationID).Msg("touch conversation failed")
	}

	if err := s.messages.UpdateStatus(ctx, msg.ID, message.StatusReceived, message.StatusProcessed); err != nil {
		// The reply is already queued. Leaving the inbound row in received
		// would re-pull it next run and spend a second generation, so fail
		// it with a pointer to the reply instead.
		return s.fail(ctx, msg, "finalize failed after queuing reply "+outbound.ID+": "+err.Error())
	}
	return nil
}

// fail records the terminal failure, then surfaces the reason to the batch loop.
func (s *Service) fail(ctx context.Context, msg *message.Message, reason string) error {
	if err := s.messages.MarkFailed(ctx, msg.ID, message.StatusReceived, reason); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("mark failed did not persist")
		return err
	}
	return &terminalFailure{reason: reason}
}

func (s *Service) buildReply(inbound *message.Message, ag *agent.Agent, text string) *message.Message {
	out := &message.Message{
		ID:             recordid.NewMessageID(),
		UserID:         inbound.UserID,
		AgentID:        inbound.AgentID,
		ConnectionID:   inbound.ConnectionID,
		ConversationID: inbound.ConversationID,
		ChatID:         inbound.ChatID,
		ThreadID:       inbound.ThreadID,
		Channel:        inbound.Channel,
		Direction:      message.DirectionOutbound,
		Role:           message.RoleAgent,
		Type:           message.TypeText,
		Status:         message.StatusQueued,
		Metadata:       map[string]any{"reply_to": inbound.ID, "model": ag.Model},
		CreatedAt:      s.now(),
	}
	out.SetText(text)
	out.SyncAliases()
	return out
}

type terminalFailure struct {
	reason string
}

func (e *terminalFailure) Error() string {
	return "inbound message failed terminally: " + e.reason
}
