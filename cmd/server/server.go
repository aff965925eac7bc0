package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"agenthub/services/channel-api/internal/config"
	"agenthub/services/channel-api/internal/domain/channel"
	"agenthub/services/channel-api/internal/domain/connection"
	"agenthub/services/channel-api/internal/domain/conversation"
	"agenthub/services/channel-api/internal/domain/dispatch"
	"agenthub/services/channel-api/internal/domain/ingest"
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

type Application struct {
	httpServer *httpserver.HttpServer
	scheduler  *scheduler.Scheduler
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, sched *scheduler.Scheduler, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		scheduler:  sched,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	if a.scheduler != nil {
		go a.scheduler.Run(ctx)
	}
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	encryptor, err := secrets.NewEncryptor(cfg.MasterKey)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize credential encryptor")
	}

	messageRepository := messagerepo.NewRepository(db)
	conversationRepository := conversationrepo.NewRepository(db)
	connectionRepository := connectionrepo.NewRepository(db)
	agentRepository := agentrepo.NewRepository(db)

	adapters := channel.NewRegistry(
		channel.NewTelegramAdapter(),
		channel.NewWhatsAppAdapter(),
	)

	conversationService := conversation.NewService(conversationRepository, log)
	connectionService := connection.NewService(connectionRepository, encryptor, log)
	generator := llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	ingestService := ingest.NewService(adapters, messageRepository, conversationService, connectionRepository, log)
	processService := process.NewService(messageRepository, conversationService, agentRepository, generator, cfg.ProcessBatchSize, cfg.LLMTimeout, log)

	transports := map[message.Channel]dispatch.Transport{
		message.ChannelTelegram: transport.NewTelegramSender(cfg.TelegramAPIURL, cfg.TransportTimeout, log),
	}
	dispatchService := dispatch.NewService(adapters, messageRepository, connectionService, transports, cfg.DispatchBatchSize, cfg.TransportTimeout, log)

	webhookHandler := handlers.NewWebhookHandler(ingestService, log)
	internalHandler := handlers.NewInternalHandler(dispatchService, processService, agentRepository, generator, messageRepository, cfg.AdminSecret, log)
	routes := v1.NewRoutes(handlers.NewProvider(webhookHandler, internalHandler))

	httpServer := httpserver.New(cfg, log, routes)

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(cfg.PollInterval, cfg.RunTimeout, log,
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

	app := NewApplication(httpServer, sched, log)
	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
