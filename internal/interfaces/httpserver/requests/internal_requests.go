package requests

import (
	"agenthub/services/channel-api/internal/domain/llm"
)

// GenerateRequest represents an ad-hoc reply generation request
type GenerateRequest struct {
	AgentID  string        `json:"agent_id" binding:"required"`
	Messages []ChatMessage `json:"messages" binding:"required,min=1"`
}

// ChatMessage is one turn of conversation history
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ToDomain converts request history to domain chat messages
func (r *GenerateRequest) ToDomain() []llm.ChatMessage {
	history := make([]llm.ChatMessage, 0, len(r.Messages))
	for _, m := range r.Messages {
		history = append(history, llm.ChatMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return history
}
