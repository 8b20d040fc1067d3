package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/ordermanager/oms/internal/dal/postgres"
	"github.com/ordermanager/oms/internal/dal/rabbitmq"
	"github.com/ordermanager/oms/internal/dal/redis"
	deadletterrepo "github.com/ordermanager/oms/internal/dal/repositories/deadletter/postgres"
	dedupredis "github.com/ordermanager/oms/internal/dal/repositories/dedup/redis"
	eventbusrepo "github.com/ordermanager/oms/internal/dal/repositories/eventbus/rabbitmq"
	ordercacheredis "github.com/ordermanager/oms/internal/dal/repositories/ordercache/redis"
	outboxrepo "github.com/ordermanager/oms/internal/dal/repositories/outbox/postgres"
	"github.com/ordermanager/oms/internal/integration/freight"
	"github.com/ordermanager/oms/internal/integration/viacep"
	"github.com/ordermanager/oms/internal/otel"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
	"github.com/ordermanager/oms/internal/service/services/emailsvc"
	"github.com/ordermanager/oms/internal/service/services/ordersvc"
	"github.com/ordermanager/oms/internal/service/services/stocksvc"
	"github.com/ordermanager/oms/internal/transport/consumer"
	httptransport "github.com/ordermanager/oms/internal/transport/http"
	outboxworker "github.com/ordermanager/oms/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	receivers      []*consumer.Receiver
	drains         []*consumer.DeadLetterDrain
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	redisClient    *redis.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	rabbitMqClient := rabbitmq.MustNewClient()
	postgresClient := postgres.MustNewClient()
	redisClient := redis.MustNewClient()

	eventBus := eventbusrepo.NewEventBusRabbitMQRepository(rabbitMqClient)
	outboxRepository := outboxrepo.NewOutboxRepository(postgresClient.Pool())
	deadLetterRepository := deadletterrepo.NewDeadLetterRepository(postgresClient.Pool())
	orderCache := ordercacheredis.NewOrderCacheRedisRepository(redisClient)
	deduplicator := dedupredis.NewDedupRedisRepository(redisClient)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithOutboxRepository(outboxRepository),
		ordersvc.WithOrderCache(orderCache),
		ordersvc.WithEventBus(eventBus),
		ordersvc.WithAddressLookup(viacep.NewClient()),
		ordersvc.WithFreightQuoter(freight.NewClient()),
	)

	stockSvc := stocksvc.MustNewStockService(
		stocksvc.WithDeduplicator(deduplicator),
	)
	emailSvc := emailsvc.MustNewEmailService(
		emailsvc.WithDeduplicator(deduplicator),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, deadLetterRepository)
	transport.RegisterRoutes()

	outboxWorker := outboxworker.NewWorker(outboxRepository, eventBus)

	paths := []struct {
		name    string
		kind    string
		handler consumer.Handler
	}{
		{"order_created_stock", orderevent.KindOrderCreated, consumer.OrderCreatedHandler(stockSvc)},
		{"order_created_email", orderevent.KindOrderCreated, consumer.OrderCreatedHandler(emailSvc)},
		{"order_updated_stock", orderevent.KindOrderUpdated, consumer.OrderUpdatedHandler(stockSvc)},
		{"order_updated_email", orderevent.KindOrderUpdated, consumer.OrderUpdatedHandler(emailSvc)},
	}

	receivers := make([]*consumer.Receiver, 0, len(paths))
	drains := make([]*consumer.DeadLetterDrain, 0, len(paths))

	for _, p := range paths {
		cfg := consumerConfig(p.name, p.kind)

		// Each receive path gets its own channel so prefetch limits
		// stay independent.
		channel, err := rabbitMqClient.Connection().Channel()
		if err != nil {
			panic("failed to open consumer channel: " + err.Error())
		}
		pathClient := rabbitmq.NewClientWithChannel(rabbitMqClient.Connection(), channel)

		receiver, err := consumer.NewReceiver(pathClient, cfg, p.handler)
		if err != nil {
			panic("failed to set up consumer for " + cfg.Queue + ": " + err.Error())
		}
		receivers = append(receivers, receiver)

		drainChannel, err := rabbitMqClient.Connection().Channel()
		if err != nil {
			panic("failed to open drain channel: " + err.Error())
		}
		drainClient := rabbitmq.NewClientWithChannel(rabbitMqClient.Connection(), drainChannel)
		drains = append(drains, consumer.NewDeadLetterDrain(drainClient, cfg, deadLetterRepository))
	}

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		outboxWorker:   outboxWorker,
		receivers:      receivers,
		drains:         drains,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		redisClient:    redisClient,
		otelController: otelController,
	}
}

// consumerConfig reads one receive path configuration.
func consumerConfig(name, eventKind string) consumer.Config {
	prefix := "rabbitmq.consumers." + name + "."

	queue := viper.GetString(prefix + "queue")
	if queue == "" {
		queue = name
	}

	prefetch := viper.GetInt(prefix + "prefetch")
	if prefetch <= 0 {
		prefetch = 8
	}

	maxRetries := viper.GetInt(prefix + "max_retries")
	if maxRetries <= 0 {
		maxRetries = 3
	}

	backoff := viper.GetDuration(prefix + "backoff")
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return consumer.Config{
		Queue:       queue,
		EventKind:   eventKind,
		ConsumerTag: queue + "-consumer",
		Prefetch:    prefetch,
		MaxRetries:  maxRetries,
		Backoff:     backoff,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(ctx)
	}()

	for _, receiver := range a.receivers {
		go func() {
			if err := receiver.Run(ctx); err != nil {
				slog.Error("Consumer error", "error", err)
			}
		}()
	}

	for _, drain := range a.drains {
		go func() {
			if err := drain.Run(ctx); err != nil {
				slog.Error("Dead-letter drain error", "error", err)
			}
		}()
	}

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown shuts down components sequentially: HTTP server,
// outbox worker, consumers, then the shared clients.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped gracefully")

	for _, receiver := range a.receivers {
		if err := receiver.Shutdown(); err != nil {
			slog.Error("Consumer shutdown error", "error", err)
		}
	}

	for _, drain := range a.drains {
		if err := drain.Shutdown(); err != nil {
			slog.Error("Dead-letter drain shutdown error", "error", err)
		}
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	} else {
		slog.Info("Redis connection closed gracefully")
	}

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}
}
