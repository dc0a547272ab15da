package bootstrap

import (
	"time"

	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/controller"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/pkg/mailer"
	"realtime-chat-be/internal/repository/memory"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/internal/service"
	"realtime-chat-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	UserController controller.IUserController
	ChatController controller.IChatController

	// Shared across controllers and server wiring.
	AuthService service.IAuthService
	Registry    *websocket.Registry
	Logger      logger.ILogger

	// Background services, exposed for main.go to run.
	MailConsumer service.IMailConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	deliveryLogger := logger.NewIsolatedLogger(cfg.App.DeliveryLogPath)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	eventPublisher := service.NewEventPublisher(pubSub, cfg.Delivery.MailTopic)
	mailConsumer := service.NewMailConsumerService(pubSub, cfg.Delivery.MailTopic, emailService, sysLogger)

	// Refresh tokens live at most their configured TTL in the denylist.
	denylist := memory.NewTokenDenylist(time.Duration(cfg.JWT.RefreshTTLMinutes) * time.Minute)

	// Live connection registry and fan-out
	registry := websocket.NewRegistry(deliveryLogger)
	deliveryService := service.NewDeliveryService(
		registry,
		uowFactory,
		time.Duration(cfg.Delivery.PushTimeoutMillis)*time.Millisecond,
		deliveryLogger,
	)

	// Services
	authService := service.NewAuthService(uowFactory, cfg.JWT, denylist, eventPublisher, sysLogger)
	userService := service.NewUserService(uowFactory)
	authorizer := service.NewMembershipAuthorizer(uowFactory)
	chatService := service.NewChatService(uowFactory, authorizer, deliveryService, sysLogger)

	return &Container{
		AuthController: controller.NewAuthController(authService),
		UserController: controller.NewUserController(userService),
		ChatController: controller.NewChatController(chatService, authService, registry, deliveryLogger),

		AuthService: authService,
		Registry:    registry,
		Logger:      sysLogger,

		MailConsumer: mailConsumer,
	}
}
