package v1

import (
	"github.com/gin-gonic/gin"

	"agenthub/services/channel-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/webhooks/:channel", r.handlers.Webhook.Receive)
	group.POST("/webhooks/:channel/:agentID", r.handlers.Webhook.Receive)

	internal := group.Group("/internal", r.handlers.Internal.RequireAdminSecret())
	internal.POST("/dispatch", r.handlers.Internal.Dispatch)
	internal.POST("/process", r.handlers.Internal.Process)
	internal.POST("/llm-generate", r.handlers.Internal.Generate)
	internal.POST("/messages/:id/requeue", r.handlers.Internal.Requeue)
}
