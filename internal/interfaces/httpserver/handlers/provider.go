package handlers

// Provider wires HTTP handlers.
type Provider struct {
	Webhook  *WebhookHandler
	Internal *InternalHandler
}

func NewProvider(webhook *WebhookHandler, internal *InternalHandler) *Provider {
	return &Provider{
		Webhook:  webhook,
		Internal: internal,
	}
}
