package message

import (
	"encoding/json"
	"time"
)

// Channel identifies the messaging platform a message belongs to.
type Channel string

const (
	ChannelWebsite   Channel = "website"
	ChannelTelegram  Channel = "telegram"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
	ChannelSlack     Channel = "slack"
	ChannelDiscord   Channel = "discord"
)

// ParseChannel normalizes a raw channel string, falling back to website.
func ParseChannel(raw string) (Channel, bool) {
	switch Channel(raw) {
	case ChannelWebsite, ChannelTelegram, ChannelWhatsApp, ChannelFacebook,
		ChannelInstagram, ChannelSlack, ChannelDiscord:
		return Channel(raw), true
	}
	return ChannelWebsite, false
}

// Direction indicates message flow relative to the platform.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Role indicates who authored the message.
type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
)

// Type classifies message content.
type Type string

const (
	TypeText     Type = "text"
	TypeImage    Type = "image"
	TypeAudio    Type = "audio"
	TypeVideo    Type = "video"
	TypeFile     Type = "file"
	TypeLocation Type = "location"
	TypeSticker  Type = "sticker"
	TypeEvent    Type = "event"
	TypeTemplate Type = "template"
)

// Attachment describes one media item carried by a message. URL uses a
// platform scheme (e.g. telegram-file://<file_id>) that references the
// platform's file store rather than fetchable bytes.
type Attachment struct {
	Type string         `json:"type"`
	URL  string         `json:"url"`
	Name string         `json:"name,omitempty"`
	Size int64          `json:"size,omitempty"`
	Mime string         `json:"mime,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Message is the canonical record of one inbound or outbound communication unit.
type Message struct {
	ID string `json:"id"`

	UserID       *string `json:"user_id,omitempty"`
	AgentID      *string `json:"agent_id,omitempty"`
	ConnectionID *string `json:"connection_id,omitempty"`

	ConversationID *string `json:"conversation_id,omitempty"`
	ChatID         *string `json:"chat_id,omitempty"`
	ThreadID       *string `json:"thread_id,omitempty"`

	Channel Channel `json:"channel"`
	// Platform is a legacy alias that always mirrors Channel. Channel is
	// authoritative; Platform is derived at persistence time.
	Platform Channel `json:"platform"`

	Direction Direction `json:"direction"`
	Role      Role      `json:"role"`

	Type        Type    `json:"message_type"`
	ContentText *string `json:"content_text,omitempty"`
	// Content is a legacy mirror of ContentText.
	Content     *string         `json:"content,omitempty"`
	ContentJSON json.RawMessage `json:"content_json,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty"`

	ExternalMessageID      *string `json:"external_message_id,omitempty"`
	ExternalConversationID *string `json:"external_conversation_id,omitempty"`
	SenderExternalID       *string `json:"sender_external_id,omitempty"`

	Status   Status         `json:"status"`
	Metadata map[string]any `json:"metadata,omitempty"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Text returns the best available textual content: content_text, then the
// legacy content mirror, then empty string.
func (m *Message) Text() string {
	if m.ContentText != nil && *m.ContentText != "" {
		return *m.ContentText
	}
	if m.Content != nil {
		return *m.Content
	}
	return ""
}

// SetText assigns content_text and keeps the legacy content mirror in sync.
func (m *Message) SetText(text string) {
	m.ContentText = &text
	m.Content = &text
}

// SyncAliases enforces the derived-field invariants before persistence.
func (m *Message) SyncAliases() {
	m.Platform = m.Channel
	if m.ContentText != nil && (m.Content == nil || *m.Content != *m.ContentText) {
		m.Content = m.ContentText
	}
}
