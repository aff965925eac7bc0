package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postInternal(t *testing.T, fx *routerFixture, path, body, secret string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Admin-Secret", secret)
	}
	rec := httptest.NewRecorder()
	fx.engine.ServeHTTP(rec, req)
	return rec
}

func TestInternal_RequiresAdminSecret(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{"missing secret", "", http.StatusUnauthorized},
		{"wrong secret", "wrong-secret-0123456789abcd", http.StatusUnauthorized},
		{"correct secret", testAdminSecret, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postInternal(t, fx, "/v1/internal/dispatch", "", tt.secret)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestInternal_DispatchReportsCounts(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	rec := postInternal(t, fx, "/v1/internal/dispatch", "", testAdminSecret)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["sent"])
	assert.Equal(t, float64(0), resp["failed"])
	assert.Equal(t, float64(0), resp["skipped"])
}

func TestInternal_ProcessReportsCounts(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{reply: "hi"})

	rec := postInternal(t, fx, "/v1/internal/process", "", testAdminSecret)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["processed"])
	assert.Equal(t, float64(0), resp["failed"])
}

func TestInternal_GenerateReturnsReply(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{reply: "we open at 9am"})

	body := `{"agent_id": "agent_1", "messages": [{"role": "user", "content": "opening hours?"}]}`
	rec := postInternal(t, fx, "/v1/internal/llm-generate", body, testAdminSecret)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "we open at 9am", resp["text"])
}

func TestInternal_GenerateValidation(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{reply: "unused"})

	tests := []struct {
		name string
		body string
	}{
		{"missing agent", `{"messages": [{"role": "user", "content": "hi"}]}`},
		{"empty history", `{"agent_id": "agent_1", "messages": []}`},
		{"not json", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postInternal(t, fx, "/v1/internal/llm-generate", tt.body, testAdminSecret)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestInternal_GenerateUnknownAgent(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{reply: "unused"})

	body := `{"agent_id": "agent_missing", "messages": [{"role": "user", "content": "hi"}]}`
	rec := postInternal(t, fx, "/v1/internal/llm-generate", body, testAdminSecret)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInternal_GenerateUpstreamFailure(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{err: errors.New("llm upstream 503")})

	body := `{"agent_id": "agent_1", "messages": [{"role": "user", "content": "hi"}]}`
	rec := postInternal(t, fx, "/v1/internal/llm-generate", body, testAdminSecret)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInternal_RequeueMessage(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})

	rec := postInternal(t, fx, "/v1/internal/messages/msg_01/requeue", "", testAdminSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"msg_01"}, fx.messages.requeued)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "msg_01", resp["id"])
}

func TestInternal_RequeueUnknownMessage(t *testing.T) {
	fx := newRouterFixture(&fakeGenerator{})
	fx.messages.requeueErr = repoNotFound("message not found")

	rec := postInternal(t, fx, "/v1/internal/messages/msg_missing/requeue", "", testAdminSecret)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
