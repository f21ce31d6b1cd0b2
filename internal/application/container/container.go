// Package container provides dependency injection wiring for the
// application.
package container

import (
	"fmt"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/infrastructure/database"
	"github.com/mycomize/mycomize-go/internal/infrastructure/messaging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/infrastructure/payments"
	persistencecommerce "github.com/mycomize/mycomize-go/internal/infrastructure/persistence/commerce"
	persistencecultivation "github.com/mycomize/mycomize-go/internal/infrastructure/persistence/cultivation"
	persistencedb "github.com/mycomize/mycomize-go/internal/infrastructure/persistence/database"
	persistenceuser "github.com/mycomize/mycomize-go/internal/infrastructure/persistence/user"
	"github.com/mycomize/mycomize-go/pkg/config"
)

// Container holds every long-lived dependency and the services wired from
// them.
type Container struct {
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	DB          *persistencedb.DB

	Broadcaster *messaging.SSEBroadcaster
	Publisher   *messaging.EventPublisher

	AuthService      *services.AuthService
	GrowService      *services.GrowService
	InventoryService *services.InventoryService
	TekService       *services.TekService
	TemplateService  *services.TemplateService
	CalendarService  *services.CalendarService
	IoTService       *services.IoTService
	PaymentService   *services.PaymentService
	OrderService     *services.OrderService
	WebhookService   *services.WebhookService
}

// New wires the full dependency graph: database, schema, repositories,
// broadcaster, and services.
func New(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) (*Container, error) {
	db, err := persistencedb.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.NewTableCreator().CreateSchema(db.DB); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	userRepo := persistenceuser.NewUserRepository(db.DB, logger)
	growRepo := persistencecultivation.NewGrowRepository(db.DB, logger)
	inventoryRepo := persistencecultivation.NewInventoryRepository(db.DB, logger)
	tekRepo := persistencecultivation.NewTekRepository(db.DB, logger)
	templateRepo := persistencecultivation.NewTemplateRepository(db.DB, logger)
	calendarRepo := persistencecultivation.NewCalendarRepository(db.DB, logger)
	iotRepo := persistencecultivation.NewIoTRepository(db.DB, logger)
	orderRepo := persistencecommerce.NewOrderRepository(db.DB, logger)

	broadcaster := messaging.NewSSEBroadcaster(messaging.BroadcasterConfig{
		QueueDepth:     config.SSEQueueDepth,
		MaxConnections: config.MaxSSEConnections,
		StaleThreshold: config.SSEStaleThreshold,
		SweepInterval:  config.SSESweepInterval,
	}, logger)
	publisher := messaging.NewEventPublisher(broadcaster, logger)

	gateway := payments.NewStripeGateway(config.StripeSecretKey, config.StripeWebhookSecret, logger)

	paymentService := services.NewPaymentService(gateway, userRepo, logger, perfTracker)

	return &Container{
		Logger:      logger,
		PerfTracker: perfTracker,
		DB:          db,

		Broadcaster: broadcaster,
		Publisher:   publisher,

		AuthService:      services.NewAuthService(userRepo, logger, perfTracker),
		GrowService:      services.NewGrowService(growRepo, inventoryRepo),
		InventoryService: services.NewInventoryService(inventoryRepo),
		TekService:       services.NewTekService(tekRepo, logger),
		TemplateService:  services.NewTemplateService(templateRepo, growRepo),
		CalendarService:  services.NewCalendarService(calendarRepo),
		IoTService:       services.NewIoTService(iotRepo, growRepo, logger),
		PaymentService:   paymentService,
		OrderService:     services.NewOrderService(orderRepo),
		WebhookService: services.NewWebhookService(gateway, userRepo, orderRepo,
			paymentService, publisher, logger, perfTracker),
	}, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
