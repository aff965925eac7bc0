package connection

import (
	"time"

	"agenthub/services/channel-api/internal/domain/message"
)

// Status marks whether a connection may be used for sending.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Connection is a tenant's credentials and configuration for one channel
// integration. Non-secret configuration lives in Config; secret material is
// stored only in the encrypted Credentials blob.
type Connection struct {
	ID       string          `json:"id"`
	AgentID  string          `json:"agent_id"`
	Platform message.Channel `json:"platform"`
	Status   Status          `json:"status"`

	// Config holds non-secret settings (webhook URL, bot username, chat
	// defaults). Never contains tokens.
	Config map[string]any `json:"config,omitempty"`

	// EncryptedCredentials is the AES-GCM sealed secret blob, base64
	// encoded with the nonce prefixed. Decrypted only at send/verify time.
	EncryptedCredentials string `json:"-"`

	// WebhookSecret authenticates inbound webhook deliveries for this
	// connection (e.g. Telegram's secret_token header).
	WebhookSecret *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credentials is the decrypted secret material needed to send on a channel.
type Credentials struct {
	BotToken    string `json:"bot_token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	PhoneID     string `json:"phone_id,omitempty"`
}
