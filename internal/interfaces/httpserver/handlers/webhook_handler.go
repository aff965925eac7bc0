package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/domain/ingest"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/infrastructure/metrics"
	"agenthub/services/channel-api/internal/interfaces/httpserver/responses"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// telegramSecretHeader carries Telegram's webhook secret token.
const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives raw platform deliveries.
type WebhookHandler struct {
	ingest *ingest.Service
	log    zerolog.Logger
}

func NewWebhookHandler(ingestService *ingest.Service, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		ingest: ingestService,
		log:    log.With().Str("component", "webhook-handler").Logger(),
	}
}

// Receive handles POST /v1/webhooks/:channel and /v1/webhooks/:channel/:agentID.
// Platforms enforce short webhook SLAs and retry aggressively on non-2xx, so
// everything past basic request validation acknowledges success even when
// ingestion fails; failures are logged and the message reconciled later.
func (h *WebhookHandler) Receive(c *gin.Context) {
	ch, ok := message.ParseChannel(c.Param("channel"))
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unknown channel", "b81f2c55-6d2a-4f9e-8a07-91c3de60f4b2")
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 || !json.Valid(raw) {
		metrics.RecordWebhook(string(ch), "malformed")
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "request body must be valid JSON", "3e9d7b40-52c1-4ad8-bb6e-07f4a2c91d53")
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), ch, raw, ingest.Hints{
		AgentID:       c.Param("agentID"),
		WebhookSecret: c.GetHeader(telegramSecretHeader),
	})
	if err != nil {
		h.log.Error().Err(err).Str("channel", string(ch)).Msg("webhook ingestion failed")
		metrics.RecordWebhook(string(ch), "error")
		c.JSON(http.StatusOK, responses.WebhookAckResponse{OK: true})
		return
	}

	if result.Stored {
		metrics.RecordWebhook(string(ch), "stored")
	} else {
		metrics.RecordWebhook(string(ch), "empty")
	}
	c.JSON(http.StatusOK, responses.WebhookAckResponse{OK: true})
}
