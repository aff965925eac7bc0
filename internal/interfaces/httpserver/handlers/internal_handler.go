package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/domain/dispatch"
	"agenthub/services/channel-api/internal/domain/llm"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/domain/process"
	"agenthub/services/channel-api/internal/interfaces/httpserver/requests"
	"agenthub/services/channel-api/internal/interfaces/httpserver/responses"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// adminSecretHeader authenticates operator and scheduler calls.
const adminSecretHeader = "X-Admin-Secret"

// InternalHandler exposes operator/scheduler trigger endpoints.
type InternalHandler struct {
	dispatcher  *dispatch.Service
	processor   *process.Service
	agents      agent.Repository
	generator   llm.Provider
	messages    message.Repository
	adminSecret string
	log         zerolog.Logger
}

func NewInternalHandler(
	dispatcher *dispatch.Service,
	processor *process.Service,
	agents agent.Repository,
	generator llm.Provider,
	messages message.Repository,
	adminSecret string,
	log zerolog.Logger,
) *InternalHandler {
	return &InternalHandler{
		dispatcher:  dispatcher,
		processor:   processor,
		agents:      agents,
		generator:   generator,
		messages:    messages,
		adminSecret: adminSecret,
		log:         log.With().Str("component", "internal-handler").Logger(),
	}
}

// RequireAdminSecret rejects calls without the shared operator secret.
func (h *InternalHandler) RequireAdminSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(adminSecretHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.adminSecret)) != 1 {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing or invalid admin secret", "0f6a1df3-4a3e-4a38-9d6b-3e2f8c54d1a0")
			return
		}
		c.Next()
	}
}

// Dispatch drains the outbound queue once.
func (h *InternalHandler) Dispatch(c *gin.Context) {
	result, err := h.dispatcher.Run(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("dispatch run failed")
		responses.HandleError(c, err, "dispatch run failed")
		return
	}
	c.JSON(http.StatusOK, responses.BuildDispatchRunResponse(result))
}

// Process runs one inbound-processor pass.
func (h *InternalHandler) Process(c *gin.Context) {
	result, err := h.processor.Run(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("processor run failed")
		responses.HandleError(c, err, "processor run failed")
		return
	}
	c.JSON(http.StatusOK, responses.BuildProcessRunResponse(result))
}

// Generate invokes the reply generation service for one agent and history.
func (h *InternalHandler) Generate(c *gin.Context) {
	var req requests.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "7c4b9a21-8e5d-4f07-b1c9-52a6de9f3e84")
		return
	}

	ag, err := h.agents.GetByID(c.Request.Context(), req.AgentID)
	if err != nil {
		responses.HandleError(c, err, "agent lookup failed")
		return
	}

	text, err := h.generator.GenerateReply(c.Request.Context(), ag, req.ToDomain())
	if err != nil {
		h.log.Error().Err(err).Str("agent_id", req.AgentID).Msg("generation failed")
		responses.HandleError(c, err, "reply generation failed")
		return
	}

	c.JSON(http.StatusOK, responses.GenerateResponse{Text: text})
}

// Requeue is the deliberate failed -> queued recovery operation.
func (h *InternalHandler) Requeue(c *gin.Context) {
	id := c.Param("id")
	if err := h.messages.Requeue(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "requeue failed")
		return
	}
	c.JSON(http.StatusOK, responses.RequeueResponse{OK: true, ID: id})
}
