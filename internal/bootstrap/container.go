package bootstrap

import (
	"context"
	"log"

	"multichat-be/internal/config"
	"multichat-be/internal/controller"
	"multichat-be/internal/handler"
	"multichat-be/internal/pkg/logger"
	"multichat-be/internal/pkg/mailer"
	"multichat-be/internal/repository/memory"
	"multichat-be/internal/repository/unitofwork"
	"multichat-be/internal/service"
	"multichat-be/internal/websocket"
	"multichat-be/pkg/llm/factory"

	pktNats "multichat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	ChatController       controller.IChatController
	PreferenceController controller.IPreferenceController
	ArchiveController    controller.IArchiveController

	// Background Services (Exposed for main.go to run)
	StreamConsumerService service.IStreamConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Model gateway over the configured provider keys
	gateway := factory.NewGateway(cfg.Keys.OpenAI, cfg.Keys.GoogleGemini)

	// In-memory generation registry (cancel funcs, in-flight guards)
	generationRepo := memory.NewGenerationRepository()

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	publisherService := service.NewPublisherService(pubSub, cfg.Chat.StreamTopic)
	streamConsumerService := service.NewStreamConsumerService(pubSub, cfg.Chat.StreamTopic, wsHub, wsLogger)

	chatService := service.NewChatService(
		uowFactory,
		gateway,
		generationRepo,
		publisherService,
		eventPublisher,
		sysLogger,
		cfg.Chat.GenerationTimeout,
	)
	archiveService := service.NewArchiveService(uowFactory, eventPublisher, sysLogger)
	preferenceService := service.NewPreferenceService(uowFactory)
	authService := service.NewAuthService(uowFactory, emailService, chatService, eventPublisher, sysLogger)

	// Cross-instance sync worker
	if natsSub != nil {
		syncService := service.NewSyncService(natsSub, wsHub, wsLogger)
		go syncService.Start()
	}

	// Handler
	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,

		AuthController:       controller.NewAuthController(authService),
		ChatController:       controller.NewChatController(chatService),
		PreferenceController: controller.NewPreferenceController(preferenceService),
		ArchiveController:    controller.NewArchiveController(archiveService),

		StreamConsumerService: streamConsumerService,
	}
}
