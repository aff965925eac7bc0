package llm

import (
	"context"

	"agenthub/services/channel-api/internal/domain/agent"
)

// ChatMessage is one turn in the history sent to the reply generator.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest mirrors the chat-completions wire format.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatCompletionResponse mirrors the chat-completions wire format.
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Provider generates reply text for an agent. Consumed as a black box; any
// non-success is terminal for the triggering inbound message.
type Provider interface {
	GenerateReply(ctx context.Context, ag *agent.Agent, history []ChatMessage) (string, error)
}
