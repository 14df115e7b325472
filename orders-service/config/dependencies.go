package config

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/draftea/order-system/orders-service/application"
	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/orders-service/handlers"
	"github.com/draftea/order-system/orders-service/infrastructure"
	"github.com/draftea/order-system/shared/events"
	sharedinfra "github.com/draftea/order-system/shared/infrastructure"
	"github.com/draftea/order-system/shared/logging"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const rabbitDialAttempts = 5

type Dependencies struct {
	Logger    *zap.Logger
	Telemetry *telemetry.Telemetry

	// Database
	DB *sqlx.DB

	// Repositories
	OrderRepository *infrastructure.PostgresOrderRepository
	EventStore      *sharedinfra.PostgresEventStore

	// Use Cases
	ProcessOrder          *application.ProcessOrder
	ProcessPaymentOutcome *application.ProcessPaymentOutcome
	GetOrder              *application.GetOrder
	ListOrders            *application.ListOrders
	GetOrderHistory       *application.GetOrderHistory

	// HTTP Handlers
	OrderHandlers   *handlers.OrderHandlers
	PaymentHandlers *handlers.PaymentHandlers

	// Event Handlers
	OrderEventHandlers *handlers.OrderEventHandlers

	// Infrastructure
	EventPublisher  events.Publisher
	EventSubscriber events.Subscriber

	redis             *redis.Client
	rabbitConn        *amqp.Connection
	shutdownTelemetry func()
}

func BuildDependencies(ctx context.Context, config *Config) (_ *Dependencies, err error) {
	deps := &Dependencies{}
	defer func() {
		if err != nil {
			_ = deps.Close()
		}
	}()

	deps.Logger, err = logging.New(config.ServiceName, config.Env, config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if config.Telemetry.Enabled {
		telConfig := telemetry.OrdersServiceConfig.
			WithServiceName(config.ServiceName).
			WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		deps.Telemetry, deps.shutdownTelemetry, err = telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to init telemetry: %w", err)
		}
	}

	// Initialize database
	deps.DB, err = sqlx.ConnectContext(ctx, "postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize AWS infrastructure
	awsCfg, err := sharedinfra.LoadAWSConfig(ctx, sharedinfra.AWSConfig{
		Region:   config.AWS.Region,
		Endpoint: config.AWS.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	// Initialize repositories
	deps.OrderRepository = infrastructure.NewPostgresOrderRepository(deps.DB)
	deps.EventStore = sharedinfra.NewPostgresEventStore(deps.DB)

	publishers := []events.Publisher{deps.EventStore}
	if config.AWS.SNSTopicArn != "" {
		snsClient := sharedinfra.NewSNSClient(awsCfg, config.AWS.Endpoint)
		publishers = append(publishers, sharedinfra.NewSNSEventPublisher(snsClient, config.AWS.SNSTopicArn, deps.Logger))
	}
	deps.EventPublisher = sharedinfra.NewFanoutPublisher(publishers...)

	if deps.EventSubscriber, err = deps.buildSubscriber(config, awsCfg); err != nil {
		return nil, err
	}

	locker, err := deps.buildLocker(ctx, config)
	if err != nil {
		return nil, err
	}

	// Collaborators
	customers := infrastructure.NewHTTPCustomerDirectory(config.Clients.CustomerURL, config.Clients.Timeout)
	products := infrastructure.NewHTTPProductCatalog(config.Clients.ProductURL, config.Clients.Timeout)
	stock := infrastructure.NewHTTPStockService(config.Clients.StockURL, config.Clients.Timeout)
	payments := infrastructure.NewHTTPPaymentService(config.Clients.PaymentURL, config.Clients.Timeout)

	// Initialize use cases
	logger := deps.Logger
	writer := application.NewOrderWriter(deps.OrderRepository, deps.EventPublisher, logger)
	stockReservation := application.NewStockReservation(stock, logger)

	deps.ProcessOrder = application.NewProcessOrder(
		application.NewOrderValidator(application.MandatoryFieldsValidation{}),
		application.NewEnrichOrderDetails(writer,
			application.NewCustomerDetailsStrategy(customers),
			application.NewProductDetailsStrategy(products),
		),
		stockReservation,
		application.NewInitPayment(payments, writer, logger),
		writer,
		locker,
		logger,
	)
	deps.ProcessPaymentOutcome = application.NewProcessPaymentOutcome(
		deps.OrderRepository, payments, stockReservation, writer, locker, logger,
	)
	deps.GetOrder = application.NewGetOrder(deps.OrderRepository)
	deps.ListOrders = application.NewListOrders(deps.OrderRepository)
	deps.GetOrderHistory = application.NewGetOrderHistory(deps.OrderRepository, deps.EventStore)

	// Initialize handlers
	var auth func(http.Handler) http.Handler
	if config.Auth.CallbackSecret != "" {
		auth = handlers.NewCallbackAuth(config.Auth.CallbackSecret, logger)
	}
	deps.OrderHandlers = handlers.NewOrderHandlers(deps.GetOrder, deps.ListOrders, deps.GetOrderHistory, logger)
	deps.PaymentHandlers = handlers.NewPaymentHandlers(deps.ProcessPaymentOutcome, auth, logger)
	deps.OrderEventHandlers = handlers.NewOrderEventHandlers(deps.ProcessOrder, deps.ProcessPaymentOutcome, logger)

	return deps, nil
}

func (d *Dependencies) buildSubscriber(config *Config, awsCfg aws.Config) (events.Subscriber, error) {
	switch config.Intake.Transport {
	case TransportRabbitMQ:
		conn, ch, err := sharedinfra.DialRabbitMQ(config.RabbitMQ.URL, rabbitDialAttempts, d.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		d.rabbitConn = conn

		// Raw order bodies on the queue are treated as intake messages
		return sharedinfra.NewRabbitMQSubscriber(ch, sharedinfra.RabbitMQConfig{
			Queue:            config.RabbitMQ.Queue,
			Durable:          config.RabbitMQ.Durable,
			Prefetch:         config.RabbitMQ.Prefetch,
			Workers:          config.Intake.Workers,
			DefaultEventType: events.OrderReceivedEvent,
		}, d.Logger), nil
	default:
		sqsClient := sharedinfra.NewSQSClient(awsCfg, config.AWS.Endpoint)
		return sharedinfra.NewSQSEventSubscriber(sqsClient, config.AWS.SQSQueueURL, d.Logger,
			sharedinfra.WithWorkers(config.Intake.Workers),
			sharedinfra.WithDefaultEventType(events.OrderReceivedEvent),
		), nil
	}
}

func (d *Dependencies) buildLocker(ctx context.Context, config *Config) (domain.OrderLocker, error) {
	if !config.Redis.Enabled {
		return infrastructure.NewLocalOrderLocker(), nil
	}

	d.redis = redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	if err := d.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return infrastructure.NewRedisOrderLocker(d.redis, config.Redis.LockTTL, d.Logger), nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var err error

	if d.EventSubscriber != nil {
		err = multierr.Append(err, wrapClose("event subscriber", d.EventSubscriber.Close()))
	}
	if d.rabbitConn != nil {
		err = multierr.Append(err, wrapClose("rabbitmq connection", d.rabbitConn.Close()))
	}
	if d.redis != nil {
		err = multierr.Append(err, wrapClose("redis", d.redis.Close()))
	}
	if d.DB != nil {
		err = multierr.Append(err, wrapClose("database", d.DB.Close()))
	}
	if d.shutdownTelemetry != nil {
		d.shutdownTelemetry()
	}
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return err
}

func wrapClose(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to close %s: %w", name, err)
}
