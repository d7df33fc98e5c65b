package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/staybook/libs/auth"
	"github.com/md-rashed-zaman/staybook/libs/config"
	"github.com/md-rashed-zaman/staybook/libs/grpcx"
	"github.com/md-rashed-zaman/staybook/libs/hotelrpc"
	"github.com/md-rashed-zaman/staybook/libs/httpx"
	otelx "github.com/md-rashed-zaman/staybook/libs/otel"
	"github.com/md-rashed-zaman/staybook/libs/runtime"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	config.LoadDotEnv()

	service := config.String("SERVICE_NAME", "gateway-service")
	port, err := config.Port("PORT", "8080")
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

	v := verifier{secret: config.String("JWT_SECRET", "")}
	if jwksURL := config.String("JWKS_URL", ""); jwksURL != "" {
		v.jwks = auth.NewJWKSClient(jwksURL, config.Duration("JWKS_CACHE_SECONDS", time.Second, 5*time.Minute), nil)
	}
	if v.secret == "" && v.jwks == nil {
		logger.Warn("neither JWT_SECRET nor JWKS_URL set; every protected route will answer 401")
	}

	deps := routeDeps{
		hotelURL: mustParseURL(config.String("HOTEL_URL", "http://hotel-service:8081")),
		verifier: v,
		logger:   logger,
	}
	if addr := config.String("HOTEL_GRPC_ADDR", ""); addr != "" {
		conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: config.Duration("HOTEL_GRPC_DIAL_SECONDS", time.Second, 5*time.Second)})
		if err != nil {
			logger.Warn("hotel grpc unavailable, proxying availability over http", "addr", addr, "err", err)
		} else {
			defer func() { _ = conn.Close() }()
			deps.availability = hotelrpc.NewClient(conn)
			logger.Info("availability checks over grpc", "addr", addr)
		}
	}
	mux := runtime.NewBaseMuxWithReady()
	registerRoutes(mux, deps)

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	var rateLimitMW httpx.Middleware
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       max(config.Int("REDIS_DB", 0), 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(limitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods:   config.List("CORS_ALLOWED_METHODS", "GET,POST,PATCH,DELETE,OPTIONS"),
			AllowedHeaders:   config.List("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id"),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           config.Duration("CORS_MAX_AGE_SECONDS", time.Second, 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT_SECONDS", time.Second, 10*time.Second)),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "gateway")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.RunHTTPServer(ctx, logger, srv, 10*time.Second)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}
