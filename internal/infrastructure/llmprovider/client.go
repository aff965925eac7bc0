package llmprovider

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"

	"agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/domain/llm"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// Client implements llm.Provider against a chat-completions style API.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &Client{httpClient: client}
}

// GenerateReply calls /v1/chat/completions with the agent's model and system
// prompt prepended to the history.
func (c *Client) GenerateReply(ctx context.Context, ag *agent.Agent, history []llm.ChatMessage) (string, error) {
	messages := make([]llm.ChatMessage, 0, len(history)+1)
	if ag.SystemPrompt != "" {
		messages = append(messages, llm.ChatMessage{Role: "system", Content: ag.SystemPrompt})
	}
	messages = append(messages, history...)

	var completion llm.ChatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(llm.ChatCompletionRequest{
			Model:       ag.Model,
			Messages:    messages,
			Temperature: ag.Temperature,
		}).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"reply generation request failed",
			err,
			"f4a5b6c7-8989-4f5a-1b6c-d7e8f9a0b1c2",
		)
	}
	if resp.IsError() {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"reply generation returned "+resp.Status()+": "+resp.String(),
			nil,
			"a5b6c7d8-9090-4a6b-2c7d-e8f9a0b1c2d3",
		)
	}
	if len(completion.Choices) == 0 {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"reply generation returned no choices",
			errors.New("empty choices"),
			"b6c7d8e9-0101-4b7c-3d8e-f9a0b1c2d3e4",
		)
	}
	return completion.Choices[0].Message.Content, nil
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)
