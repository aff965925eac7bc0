package channel

import (
	"encoding/json"
	"strconv"
	"time"

	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/utils/recordid"
)

// telegramUpdate is the slice of Telegram's Update object the adapter reads.
// Pointer fields keep absent members distinguishable from zero values; the
// payload shape is never trusted beyond this.
type telegramUpdate struct {
	UpdateID *int64           `json:"update_id"`
	Message  *telegramMessage `json:"message"`
	Edited   *telegramMessage `json:"edited_message"`
}

type telegramMessage struct {
	MessageID *int64             `json:"message_id"`
	From      *telegramUser      `json:"from"`
	Chat      *telegramChat      `json:"chat"`
	Date      *int64             `json:"date"`
	Text      *string            `json:"text"`
	Caption   *string            `json:"caption"`
	Photo     []telegramPhoto    `json:"photo"`
	Document  *telegramDocument  `json:"document"`
	Voice     *telegramVoice     `json:"voice"`
}

type telegramUser struct {
	ID        *int64  `json:"id"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
}

type telegramChat struct {
	ID   *int64  `json:"id"`
	Type *string `json:"type"`
}

type telegramPhoto struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size"`
}

type telegramDocument struct {
	FileID   string  `json:"file_id"`
	FileName *string `json:"file_name"`
	MimeType *string `json:"mime_type"`
	FileSize int64   `json:"file_size"`
}

type telegramVoice struct {
	FileID   string  `json:"file_id"`
	Duration int     `json:"duration"`
	MimeType *string `json:"mime_type"`
	FileSize int64   `json:"file_size"`
}

// TelegramAdapter maps Telegram bot updates to canonical messages and back.
type TelegramAdapter struct {
	now func() time.Time
}

func NewTelegramAdapter() *TelegramAdapter {
	return &TelegramAdapter{now: time.Now}
}

func (a *TelegramAdapter) Channel() message.Channel {
	return message.ChannelTelegram
}

// MapIncoming maps one Telegram update to a canonical inbound message.
// Content classification follows a strict priority: text beats photo beats
// document beats voice; anything else becomes an event with placeholder
// content. Malformed payloads never error out.
func (a *TelegramAdapter) MapIncoming(raw []byte, inCtx IncomingContext) (*message.Message, error) {
	var update telegramUpdate
	// Unmarshal errors are ignored: an unreadable payload degrades to an
	// event-typed message below.
	_ = json.Unmarshal(raw, &update)

	unit := update.Message
	if unit == nil {
		unit = update.Edited
	}

	msg := &message.Message{
		ID:           recordid.NewMessageID(),
		UserID:       inCtx.UserID,
		AgentID:      inCtx.AgentID,
		ConnectionID: inCtx.ConnectionID,
		Channel:      message.ChannelTelegram,
		Platform:     message.ChannelTelegram,
		Direction:    message.DirectionInbound,
		Role:         message.RoleUser,
		Status:       message.StatusReceived,
		ContentJSON:  json.RawMessage(raw),
		CreatedAt:    a.now(),
	}

	if unit == nil {
		msg.Type = message.TypeEvent
		msg.SetText("[Unsupported/Non-text message]")
		return msg, nil
	}

	if unit.Date != nil && *unit.Date > 0 {
		msg.CreatedAt = time.Unix(*unit.Date, 0).UTC()
	}
	if unit.MessageID != nil {
		id := strconv.FormatInt(*unit.MessageID, 10)
		msg.ExternalMessageID = &id
	}
	if unit.Chat != nil && unit.Chat.ID != nil {
		chatID := strconv.FormatInt(*unit.Chat.ID, 10)
		msg.ChatID = &chatID
		msg.ExternalConversationID = &chatID
	}
	if unit.From != nil && unit.From.ID != nil {
		sender := strconv.FormatInt(*unit.From.ID, 10)
		msg.SenderExternalID = &sender
	}

	switch {
	case unit.Text != nil && *unit.Text != "":
		msg.Type = message.TypeText
		msg.SetText(*unit.Text)

	case len(unit.Photo) > 0:
		msg.Type = message.TypeImage
		msg.SetText(captionOr(unit, "[Photo]"))
		// Telegram sends every thumbnail size; the last entry is the original.
		photo := unit.Photo[len(unit.Photo)-1]
		msg.Attachments = []message.Attachment{{
			Type: "image",
			URL:  "telegram-file://" + photo.FileID,
			Size: photo.FileSize,
			Meta: map[string]any{"width": photo.Width, "height": photo.Height},
		}}

	case unit.Document != nil:
		name := strValue(unit.Document.FileName)
		if name != "" {
			msg.SetText(captionOr(unit, "[File] "+name))
		} else {
			msg.SetText(captionOr(unit, "[File]"))
		}
		msg.Type = message.TypeFile
		msg.Attachments = []message.Attachment{{
			Type: "file",
			URL:  "telegram-file://" + unit.Document.FileID,
			Name: name,
			Size: unit.Document.FileSize,
			Mime: strValue(unit.Document.MimeType),
		}}

	case unit.Voice != nil:
		msg.Type = message.TypeAudio
		msg.SetText("[Voice message]")
		msg.Attachments = []message.Attachment{{
			Type: "audio",
			URL:  "telegram-file://" + unit.Voice.FileID,
			Size: unit.Voice.FileSize,
			Mime: strValue(unit.Voice.MimeType),
			Meta: map[string]any{"duration": unit.Voice.Duration},
		}}

	default:
		msg.Type = message.TypeEvent
		msg.SetText("[Unsupported/Non-text message]")
	}

	return msg, nil
}

// MapOutgoing produces the minimal sendMessage payload. Text prefers
// content_text, then the legacy content mirror, then empty string.
func (a *TelegramAdapter) MapOutgoing(msg *message.Message) (map[string]any, error) {
	payload := map[string]any{
		"method": "sendMessage",
		"text":   msg.Text(),
	}
	if msg.ChatID != nil {
		if id, err := strconv.ParseInt(*msg.ChatID, 10, 64); err == nil {
			payload["chat_id"] = id
		} else {
			payload["chat_id"] = *msg.ChatID
		}
	}
	return payload, nil
}

func captionOr(unit *telegramMessage, fallback string) string {
	if unit.Caption != nil && *unit.Caption != "" {
		return *unit.Caption
	}
	return fallback
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
