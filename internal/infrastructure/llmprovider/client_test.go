package llmprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/domain/llm"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

var testAgent = &agent.Agent{
	ID:           "agent_1",
	Model:        "gpt-4o-mini",
	SystemPrompt: "be helpful",
	Temperature:  0.4,
}

func TestGenerateReply_PrependsSystemPrompt(t *testing.T) {
	var gotReq llm.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "we open at 9am"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	text, err := client.GenerateReply(context.Background(), testAgent, []llm.ChatMessage{
		{Role: "user", Content: "opening hours?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "we open at 9am", text)

	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "be helpful", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
}

func TestGenerateReply_NoSystemPromptNoSystemTurn(t *testing.T) {
	var gotReq llm.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "hi"}}]}`))
	}))
	defer server.Close()

	bare := &agent.Agent{ID: "agent_2", Model: "gpt-4o-mini"}
	client := NewClient(server.URL, "", time.Second)
	_, err := client.GenerateReply(context.Background(), bare, []llm.ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestGenerateReply_SendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test-key", time.Second)
	_, err := client.GenerateReply(context.Background(), testAgent, []llm.ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test-key", gotAuth)
}

func TestGenerateReply_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "overloaded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.GenerateReply(context.Background(), testAgent, []llm.ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeExternal))
}

func TestGenerateReply_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.GenerateReply(context.Background(), testAgent, []llm.ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeExternal))
}
