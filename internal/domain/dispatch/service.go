package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/domain/channel"
	"agenthub/services/channel-api/internal/domain/connection"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/infrastructure/metrics"
)

// Transport performs one channel-specific send. Implementations live in
// infrastructure and carry the HTTP client; the dispatcher only sees the
// mapped payload and decrypted credentials.
type Transport interface {
	Send(ctx context.Context, creds *connection.Credentials, payload map[string]any) error
}

// CredentialResolver is the slice of the connection service the dispatcher needs.
type CredentialResolver interface {
	ResolveCredentials(ctx context.Context, connectionID string) (*connection.Connection, *connection.Credentials, error)
}

// Result summarizes one dispatcher run.
type Result struct {
	Sent    int
	Failed  int
	Skipped int
}

// Service drains queued outbound messages. Rows are claimed with an atomic
// queued -> sending transition so overlapping runs never double-send; failed
// is terminal and only an explicit Requeue resurrects a message.
type Service struct {
	adapters    channel.Registry
	messages    message.Repository
	credentials CredentialResolver
	transports  map[message.Channel]Transport
	batchSize   int
	sendTimeout time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewService(
	adapters channel.Registry,
	messages message.Repository,
	credentials CredentialResolver,
	transports map[message.Channel]Transport,
	batchSize int,
	sendTimeout time.Duration,
	log zerolog.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &Service{
		adapters:    adapters,
		messages:    messages,
		credentials: credentials,
		transports:  transports,
		batchSize:   batchSize,
		sendTimeout: sendTimeout,
		log:         log.With().Str("component", "outbound-dispatcher").Logger(),
		now:         time.Now,
	}
}

// Run executes one drain pass. Messages are processed independently; a
// failure on one never aborts the batch.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	batch, err := s.messages.ClaimQueued(ctx, s.batchSize)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, msg := range batch {
		switch s.dispatchOne(ctx, msg) {
		case outcomeSent:
			result.Sent++
			metrics.RecordDispatch(string(msg.Channel), "sent")
		case outcomeSkipped:
			result.Skipped++
			metrics.RecordDispatch(string(msg.Channel), "skipped")
		default:
			result.Failed++
			metrics.RecordDispatch(string(msg.Channel), "failed")
		}
	}
	return result, nil
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (s *Service) dispatchOne(ctx context.Context, msg *message.Message) outcome {
	adapter, ok := s.adapters.Lookup(msg.Channel, msg.Platform)
	if !ok {
		// Channel not yet supported is a capability gap, not a message
		// failure: release the claim so a future run can pick it up.
		s.release(ctx, msg)
		return outcomeSkipped
	}

	if msg.ConnectionID == nil {
		return s.fail(ctx, msg, "no connection linked to outbound message")
	}

	_, creds, err := s.credentials.ResolveCredentials(ctx, *msg.ConnectionID)
	if err != nil {
		s.log.Error().Err(err).
			Str("message_id", msg.ID).
			Str("connection_id", *msg.ConnectionID).
			Msg("credential resolution failed")
		return s.fail(ctx, msg, "credential error: "+err.Error())
	}

	payload, err := adapter.MapOutgoing(msg)
	if err != nil {
		if channel.IsNotImplemented(err) {
			s.release(ctx, msg)
			return outcomeSkipped
		}
		return s.fail(ctx, msg, "payload mapping failed: "+err.Error())
	}

	transport, ok := s.transports[msg.Channel]
	if !ok {
		s.release(ctx, msg)
		return outcomeSkipped
	}

	sendCtx := ctx
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}

	sendStart := s.now()
	err = transport.Send(sendCtx, creds, payload)
	metrics.SendDuration.WithLabelValues(string(msg.Channel)).Observe(time.Since(sendStart).Seconds())
	if err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Str("channel", string(msg.Channel)).Msg("transport send failed")
		return s.fail(ctx, msg, "transport error: "+err.Error())
	}

	if err := s.messages.MarkSent(ctx, msg.ID, s.now()); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("mark sent did not persist")
		return outcomeFailed
	}
	return outcomeSent
}

func (s *Service) fail(ctx context.Context, msg *message.Message, reason string) outcome {
	if err := s.messages.MarkFailed(ctx, msg.ID, message.StatusSending, reason); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("mark failed did not persist")
	}
	return outcomeFailed
}

func (s *Service) release(ctx context.Context, msg *message.Message) {
	if err := s.messages.UpdateStatus(ctx, msg.ID, message.StatusSending, message.StatusQueued); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("release claim did not persist")
	}
}
