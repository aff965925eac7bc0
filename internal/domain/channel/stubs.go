package channel

import "agenthub/services/channel-api/internal/domain/message"

// StubAdapter stands in for channels that are not implemented yet. Every
// operation fails with the not-implemented sentinel so the pipeline skips the
// channel instead of silently dropping messages.
type StubAdapter struct {
	channel message.Channel
}

// NewWhatsAppAdapter returns the placeholder WhatsApp adapter.
func NewWhatsAppAdapter() *StubAdapter {
	return &StubAdapter{channel: message.ChannelWhatsApp}
}

// NewStubAdapter returns a placeholder adapter for the given channel.
func NewStubAdapter(ch message.Channel) *StubAdapter {
	return &StubAdapter{channel: ch}
}

func (a *StubAdapter) Channel() message.Channel {
	return a.channel
}

func (a *StubAdapter) MapIncoming(raw []byte, inCtx IncomingContext) (*message.Message, error) {
	return nil, NotImplementedError(a.channel)
}

func (a *StubAdapter) MapOutgoing(msg *message.Message) (map[string]any, error) {
	return nil, NotImplementedError(a.channel)
}
