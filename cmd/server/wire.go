//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agenthub/services/channel-api/internal/config"
	"agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/domain/channel"
	"agenthub/services/channel-api/internal/domain/connection"
	"agenthub/services/channel-api/internal/domain/conversation"
	"agenthub/services/channel-api/internal/domain/dispatch"
	"agenthub/services/channel-api/internal/domain/ingest"
	"agenthub/services/channel-api/internal/domain/llm"
	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/domain/process"
	"agenthub/services/channel-api/internal/infrastructure/database"
	"agenthub/services/channel-api/internal/infrastructure/llmprovider"
	"agenthub/services/channel-api/internal/infrastructure/logger"
	agentrepo "agenthub/services/channel-api/internal/infrastructure/repository/agent"
	connectionrepo "agenthub/services/channel-api/internal/infrastructure/repository/connection"
	conversationrepo "agenthub/services/channel-api/internal/infrastructure/repository/conversation"
	messagerepo "agenthub/services/channel-api/internal/infrastructure/repository/message"
	"agenthub/services/channel-api/internal/infrastructure/scheduler"
	"agenthub/services/channel-api/internal/infrastructure/secrets"
	"agenthub/services/channel-api/internal/infrastructure/transport"
	"agenthub/services/channel-api/internal/interfaces/httpserver"
	"agenthub/services/channel-api/internal/interfaces/httpserver/handlers"
	v1 "agenthub/services/channel-api/internal/interfaces/httpserver/routes/v1"
)

var repositorySet = wire.NewSet(
	messagerepo.NewRepository,
	wire.Bind(new(message.Repository), new(*messagerepo.Repository)),
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	connectionrepo.NewRepository,
	wire.Bind(new(connection.Repository), new(*connectionrepo.Repository)),
	agentrepo.NewRepository,
	wire.Bind(new(agent.Repository), new(*agentrepo.Repository)),
)

var pipelineSet = wire.NewSet(
	newEncryptor,
	wire.Bind(new(connection.Decryptor), new(*secrets.Encryptor)),
	newAdapters,
	newGenerator,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	conversation.NewService,
	wire.Bind(new(ingest.ConversationResolver), new(*conversation.Service)),
	wire.Bind(new(process.ConversationToucher), new(*conversation.Service)),
	connection.NewService,
	wire.Bind(new(dispatch.CredentialResolver), new(*connection.Service)),
	ingest.NewService,
	newProcessService,
	newTransports,
	newDispatchService,
	newScheduler,
)

var httpSet = wire.NewSet(
	handlers.NewWebhookHandler,
	newInternalHandler,
	handlers.NewProvider,
	v1.NewRoutes,
	httpserver.New,
)

// BuildApplication assembles the channel API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		repositorySet,
		pipelineSet,
		httpSet,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newEncryptor(cfg *config.Config) (*secrets.Encryptor, error) {
	return secrets.NewEncryptor(cfg.MasterKey)
}

func newAdapters() channel.Registry {
	return channel.NewRegistry(
		channel.NewTelegramAdapter(),
		channel.NewWhatsAppAdapter(),
	)
}

func newGenerator(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout)
}

func newProcessService(cfg *config.Config, messages message.Repository, conversations process.ConversationToucher, agents agent.Repository, generator llm.Provider, log zerolog.Logger) *process.Service {
	return process.NewService(messages, conversations, agents, generator, cfg.ProcessBatchSize, cfg.LLMTimeout, log)
}

func newTransports(cfg *config.Config, log zerolog.Logger) map[message.Channel]dispatch.Transport {
	return map[message.Channel]dispatch.Transport{
		message.ChannelTelegram: transport.NewTelegramSender(cfg.TelegramAPIURL, cfg.TransportTimeout, log),
	}
}

func newDispatchService(cfg *config.Config, adapters channel.Registry, messages message.Repository, credentials dispatch.CredentialResolver, transports map[message.Channel]dispatch.Transport, log zerolog.Logger) *dispatch.Service {
	return dispatch.NewService(adapters, messages, credentials, transports, cfg.DispatchBatchSize, cfg.TransportTimeout, log)
}

func newScheduler(cfg *config.Config, processService *process.Service, dispatchService *dispatch.Service, log zerolog.Logger) *scheduler.Scheduler {
	if !cfg.SchedulerEnabled {
		return nil
	}
	return scheduler.New(cfg.PollInterval, cfg.RunTimeout, log,
		scheduler.JobFunc{JobName: "process-inbound", Fn: func(ctx context.Context) error {
			_, err := processService.Run(ctx)
			return err
		}},
		scheduler.JobFunc{JobName: "dispatch-outbound", Fn: func(ctx context.Context) error {
			_, err := dispatchService.Run(ctx)
			return err
		}},
	)
}

func newInternalHandler(cfg *config.Config, dispatchService *dispatch.Service, processService *process.Service, agents agent.Repository, generator llm.Provider, messages message.Repository, log zerolog.Logger) *handlers.InternalHandler {
	return handlers.NewInternalHandler(dispatchService, processService, agents, generator, messages, cfg.AdminSecret, log)
}
