package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dhruvnair/bazaarkart/db"
	"github.com/dhruvnair/bazaarkart/internal/broker"
	"github.com/dhruvnair/bazaarkart/internal/domain/cart"
	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
	"github.com/dhruvnair/bazaarkart/internal/domain/order"
	"github.com/dhruvnair/bazaarkart/internal/handler"
	"github.com/dhruvnair/bazaarkart/internal/storage/mongo"
	"github.com/dhruvnair/bazaarkart/internal/storage/redis"
	"github.com/dhruvnair/bazaarkart/pkg/health"
	"github.com/dhruvnair/bazaarkart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return errors.Wrapf(err, "parse tax rate %q", cfg.TaxRate)
	}

	// MongoDB: product catalog and orders.
	client, err := mongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return errors.Wrap(err, "connect mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			lg.Error("Mongo disconnect error", zap.Error(err))
		}
	}()

	database := client.Database(cfg.MongoDatabase)
	if err := mongo.EnsureIndexes(ctx, database); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	// Redis: session carts.
	sessions, err := redis.NewSessionStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		return errors.Wrap(err, "connect redis")
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			lg.Error("Redis close error", zap.Error(err))
		}
	}()

	// Kafka: order events, optional.
	var events order.EventPublisher = broker.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := publisher.Close(); err != nil {
				lg.Error("Kafka close error", zap.Error(err))
			}
		}()
		events = publisher
		lg.Info("Order eventing enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("mongo", 5*time.Second, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	healthSvc.AddReadinessCheck("redis", 5*time.Second, sessions.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Fallback catalog bundled into the binary.
	fallback, err := db.FallbackCatalog()
	if err != nil {
		return errors.Wrap(err, "parse fallback catalog")
	}

	// Repositories and domain services.
	productRepo := mongo.NewProductRepository(database)
	orderRepo := mongo.NewOrderRepository(database)
	source := catalog.NewSource(productRepo, fallback)
	orderService := order.NewService(source, productRepo, orderRepo, events, cart.NewPricer(taxRate))

	// HTTP handlers.
	h := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		source,
		productRepo,
		orderService,
		sessions,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("bazaarkart-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
