package message_test

import (
	"testing"

	"agenthub/services/channel-api/internal/domain/message"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     message.Status
		to       message.Status
		expected bool
	}{
		{"received to processed", message.StatusReceived, message.StatusProcessed, true},
		{"received to failed", message.StatusReceived, message.StatusFailed, true},
		{"queued to sending", message.StatusQueued, message.StatusSending, true},
		{"sending to sent", message.StatusSending, message.StatusSent, true},
		{"sending to failed", message.StatusSending, message.StatusFailed, true},
		{"sending released back to queued", message.StatusSending, message.StatusQueued, true},
		{"sent never reverts to queued", message.StatusSent, message.StatusQueued, false},
		{"sent never reverts to sending", message.StatusSent, message.StatusSending, false},
		{"failed does not self-heal to sent", message.StatusFailed, message.StatusSent, false},
		{"failed requeues deliberately", message.StatusFailed, message.StatusQueued, true},
		{"queued cannot jump to sent", message.StatusQueued, message.StatusSent, false},
		{"read is final", message.StatusRead, message.StatusQueued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("Status.CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestStatus_TransitionTo(t *testing.T) {
	next, err := message.StatusQueued.TransitionTo(message.StatusSending)
	if err != nil {
		t.Fatalf("TransitionTo returned error: %v", err)
	}
	if next != message.StatusSending {
		t.Errorf("TransitionTo = %s, want %s", next, message.StatusSending)
	}

	if _, err := message.StatusSent.TransitionTo(message.StatusQueued); err == nil {
		t.Error("expected error transitioning sent -> queued")
	}
}

func TestMessage_TextFallback(t *testing.T) {
	contentText := "hello"
	legacy := "legacy"

	tests := []struct {
		name     string
		msg      message.Message
		expected string
	}{
		{"prefers content_text", message.Message{ContentText: &contentText, Content: &legacy}, "hello"},
		{"falls back to legacy content", message.Message{Content: &legacy}, "legacy"},
		{"empty when both missing", message.Message{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Text(); got != tt.expected {
				t.Errorf("Text() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMessage_SyncAliases(t *testing.T) {
	text := "hi"
	msg := message.Message{Channel: message.ChannelTelegram, ContentText: &text}
	msg.SyncAliases()

	if msg.Platform != message.ChannelTelegram {
		t.Errorf("Platform = %s, want %s", msg.Platform, message.ChannelTelegram)
	}
	if msg.Content == nil || *msg.Content != "hi" {
		t.Errorf("Content mirror not synced, got %v", msg.Content)
	}
}
