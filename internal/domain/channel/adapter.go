package channel

import (
	"context"

	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// IncomingContext carries the linkage resolved before mapping. All fields are
// optional: inbound messages are stored even when linkage is incomplete.
type IncomingContext struct {
	UserID       *string
	AgentID      *string
	ConnectionID *string
}

// Adapter translates between a platform's native payload shape and the
// canonical message model. Implementations are pure mapping code with no I/O.
//
// MapIncoming must never fail on malformed or missing optional fields; it
// falls back to safe defaults, producing at worst an event-typed message
// with placeholder content. MapOutgoing produces the minimal send payload
// for the platform's send API.
type Adapter interface {
	Channel() message.Channel
	MapIncoming(raw []byte, inCtx IncomingContext) (*message.Message, error)
	MapOutgoing(msg *message.Message) (map[string]any, error)
}

// Registry is an explicit channel-to-adapter mapping handed to the pipeline
// services. No module-level singleton; tests pass fakes.
type Registry map[message.Channel]Adapter

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) Registry {
	reg := make(Registry, len(adapters))
	for _, a := range adapters {
		reg[a.Channel()] = a
	}
	return reg
}

// Lookup returns the adapter for ch, preferring the authoritative channel
// column and falling back to the legacy platform alias for old rows.
func (r Registry) Lookup(ch, legacy message.Channel) (Adapter, bool) {
	if a, ok := r[ch]; ok {
		return a, true
	}
	if a, ok := r[legacy]; ok {
		return a, true
	}
	return nil, false
}

// NotImplementedError builds the sentinel error a stub adapter returns so the
// dispatcher can distinguish capability gaps from data errors.
func NotImplementedError(ch message.Channel) error {
	return platformerrors.NewError(
		context.Background(),
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotImplemented,
		"channel adapter not implemented: "+string(ch),
		nil,
		"9a5b3c6e-1d8f-4c0a-3e2b-7f6c5d4a8b9c",
	)
}

// IsNotImplemented reports whether err is the unsupported-channel sentinel.
func IsNotImplemented(err error) bool {
	return platformerrors.IsType(err, platformerrors.ErrorTypeNotImplemented)
}
