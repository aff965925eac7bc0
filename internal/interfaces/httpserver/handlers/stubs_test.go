package handlers_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/domain/channel"
	"agenthub/services/channel-api/internal/domain/connection"
	"agenthub/services/channel-api/internal/domain/conversation"
	"agenthub/services/channel-api/internal/domain/dispatch"
	"agenthub/services/channel-api/internal/domain/ingest"
	"agenthub/services/channel-api/internal/domain/llm"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/domain/process"
	"agenthub/services/channel-api/internal/interfaces/httpserver/handlers"
	v1 "agenthub/services/channel-api/internal/interfaces/httpserver/routes/v1"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

const testAdminSecret = "test-admin-secret-0123456789"

type fakeMessageRepo struct {
	created    []*message.Message
	requeued   []string
	requeueErr error
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *message.Message) error {
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeMessageRepo) GetByID(context.Context, string) (*message.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) ListByStatus(context.Context, message.Direction, message.Status, int) ([]*message.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) ClaimQueued(context.Context, int) ([]*message.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) UpdateStatus(context.Context, string, message.Status, message.Status) error {
	return nil
}

func (f *fakeMessageRepo) MarkFailed(context.Context, string, message.Status, string) error {
	return nil
}

func (f *fakeMessageRepo) MarkSent(context.Context, string, time.Time) error { return nil }

func (f *fakeMessageRepo) Requeue(_ context.Context, id string) error {
	if f.requeueErr != nil {
		return f.requeueErr
	}
	f.requeued = append(f.requeued, id)
	return nil
}

type fakeConversations struct{}

func (f *fakeConversations) ResolveOrCreate(_ context.Context, key conversation.ScopeKey, _ conversation.Attributes) (*conversation.Conversation, error) {
	return &conversation.Conversation{ID: "conv_test", Channel: key.Channel, ChatID: key.ChatID, ConnectionID: key.ConnectionID}, nil
}

func (f *fakeConversations) Touch(context.Context, string, time.Time) error { return nil }

type fakeConnectionRepo struct{}

func (f *fakeConnectionRepo) GetByID(context.Context, string) (*connection.Connection, error) {
	return nil, repoNotFound("connection not found")
}

func (f *fakeConnectionRepo) FindByWebhookSecret(context.Context, string, string) (*connection.Connection, error) {
	return nil, repoNotFound("connection not found")
}

func (f *fakeConnectionRepo) FindByAgent(context.Context, string, string) (*connection.Connection, error) {
	return nil, repoNotFound("connection not found")
}

type fakeAgentRepo struct {
	agents map[string]*agent.Agent
}

func (f *fakeAgentRepo) GetByID(_ context.Context, id string) (*agent.Agent, error) {
	if ag, ok := f.agents[id]; ok {
		return ag, nil
	}
	return nil, repoNotFound("agent not found")
}

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) GenerateReply(context.Context, *agent.Agent, []llm.ChatMessage) (string, error) {
	return f.reply, f.err
}

type fakeCredentials struct{}

func (f *fakeCredentials) ResolveCredentials(context.Context, string) (*connection.Connection, *connection.Credentials, error) {
	return nil, nil, repoNotFound("connection not found")
}

func repoNotFound(msg string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, msg, nil, "test-not-found")
}

type routerFixture struct {
	engine   *gin.Engine
	messages *fakeMessageRepo
	agents   *fakeAgentRepo
}

func newRouterFixture(generator *fakeGenerator) *routerFixture {
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	messages := &fakeMessageRepo{}
	agents := &fakeAgentRepo{agents: map[string]*agent.Agent{
		"agent_1": {ID: "agent_1", Model: "gpt-4o-mini", SystemPrompt: "be helpful"},
	}}
	adapters := channel.NewRegistry(channel.NewTelegramAdapter())

	ingestService := ingest.NewService(adapters, messages, &fakeConversations{}, &fakeConnectionRepo{}, log)
	processService := process.NewService(messages, &fakeConversations{}, agents, generator, 10, time.Second, log)
	dispatchService := dispatch.NewService(adapters, messages, &fakeCredentials{}, map[message.Channel]dispatch.Transport{}, 25, time.Second, log)

	webhook := handlers.NewWebhookHandler(ingestService, log)
	internal := handlers.NewInternalHandler(dispatchService, processService, agents, generator, messages, testAdminSecret, log)

	engine := gin.New()
	v1.NewRoutes(handlers.NewProvider(webhook, internal)).Register(engine.Group("/"))

	return &routerFixture{engine: engine, messages: messages, agents: agents}
}
