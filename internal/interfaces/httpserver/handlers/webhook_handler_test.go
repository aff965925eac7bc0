package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/services/channel-api/internal/domain/message"
)

const telegramTextUpdate = `{
	"update_id": 10,
	"message": {
		"message_id": 77,
		"from": {"id": 4242, "username": "ada"},
		"chat": {"id": 9001, "type": "private"},
		"date": 1700000000,
		"text": "hello there"
	}
}`

func postWebhook(t *testing.T, fx *routerFixture, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_StoresTelegramUpdate(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	rec := postWebhook(t, fx, "/v1/webhooks/telegram", telegramTextUpdate)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])

	require.Len(t, fx.messages.created, 1)
	stored := fx.messages.created[0]
	assert.Equal(t, message.ChannelTelegram, stored.Channel)
	assert.Equal(t, message.DirectionInbound, stored.Direction)
	assert.Equal(t, "hello there", stored.Text())
}

func TestWebhook_UnknownChannelRejected(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	rec := postWebhook(t, fx, "/v1/webhooks/carrier-pigeon", telegramTextUpdate)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fx.messages.created)
}

func TestWebhook_MalformedBodyRejected(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	for _, body := range []string{"", "{not json", "   "} {
		rec := postWebhook(t, fx, "/v1/webhooks/telegram", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	assert.Empty(t, fx.messages.created)
}

func TestWebhook_ServicePingAcknowledged(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	rec := postWebhook(t, fx, "/v1/webhooks/telegram", `{"update_id": 11}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, fx.messages.created)
}

func TestWebhook_UnsupportedChannelStillAcks(t *testing.T) {
	// Slack is a known channel without an adapter yet; the platform must not
	// see an error and retry the delivery forever.
	fx := newRouterFixture(&fakeGenerator{})

	rec := postWebhook(t, fx, "/v1/webhooks/slack", `{"event": "message"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, fx.messages.created)
}

func TestWebhook_AgentHintPathAccepted(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	rec := postWebhook(t, fx, "/v1/webhooks/telegram/agent_1", telegramTextUpdate)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fx.messages.created, 1)
	// Connection lookup misses in this fixture; the message stores with
	// null context rather than bouncing.
	assert.Nil(t, fx.messages.created[0].ConnectionID)
}
