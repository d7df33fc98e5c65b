package main

import (
	"context"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/staybook/libs/config"
	"github.com/md-rashed-zaman/staybook/libs/db"
	"github.com/md-rashed-zaman/staybook/libs/httpx"
	"github.com/md-rashed-zaman/staybook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/staybook/libs/otel"
	"github.com/md-rashed-zaman/staybook/libs/runtime"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/booking"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/grpcserver"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/handlers"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/outbox"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/payments"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	config.LoadDotEnv()

	service := config.String("SERVICE_NAME", "hotel-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	var provider payments.Provider
	if key := config.String("STRIPE_SECRET_KEY", ""); key != "" {
		provider = payments.NewStripeProvider(key, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; using local payment provider")
		provider = payments.NewLocalProvider()
	}

	outboxRepo := outbox.NewRepository()
	hotels := storage.NewHotelRepository(pool)
	rooms := storage.NewRoomRepository(pool)
	bookingRepo := storage.NewBookingRepository(pool, outboxRepo)
	bookings := booking.NewService(rooms, bookingRepo, provider, logger, config.String("PAYMENT_CURRENCY", "usd"))

	brokers := config.String("KAFKA_BROKERS", "")
	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: config.Duration("OUTBOX_POLL_MS", time.Millisecond, 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go publisher.Run(ctx)

	grpcServer := grpcserver.New(logger, bookings)
	if err := grpcserver.Serve(ctx, logger, grpcServer, ":"+grpcPort); err != nil {
		logger.Error("grpc server start failed", "err", err)
		panic(err)
	}

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if brokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkax.SplitBrokers(brokers), 2*time.Second)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewAPI(hotels, rooms, bookings, logger).Register(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.RunHTTPServer(ctx, logger, srv, 10*time.Second)
}
