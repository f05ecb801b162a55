package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketpulse/internal/cache"
	"marketpulse/internal/config"
	"marketpulse/internal/db"
	"marketpulse/internal/domain"
	"marketpulse/internal/handler"
	"marketpulse/internal/indicator"
	"marketpulse/internal/job"
	"marketpulse/internal/provider"
	"marketpulse/internal/repository"
	"marketpulse/internal/service"
	"marketpulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "marketpulse/docs"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newProvidersFunc = func(cfg *config.Config, tracer trace.Tracer) map[domain.AssetClass]service.MarketDataProvider {
		providerTimeout := time.Duration(cfg.ProviderTimeoutSecs) * time.Second
		return map[domain.AssetClass]service.MarketDataProvider{
			domain.AssetCrypto: provider.NewCryptoProvider(provider.Config{
				APIKey:  cfg.CoinGeckoAPIKey,
				BaseURL: cfg.CoinGeckoBaseURL,
				Timeout: providerTimeout,
			}, tracer),
			domain.AssetEquity: provider.NewEquityProvider(provider.Config{
				BaseURL: cfg.YahooBaseURL,
				Timeout: providerTimeout,
			}, tracer),
		}
	}
	startRefresherFunc     = func(r *job.Refresher, ctx context.Context) { go r.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           MarketPulse API
// @version         1.0
// @description     Aggregated market data, quotes, news, and technical indicators for crypto and equity assets.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations. Without a database the
	// service still runs on live fetches and the Redis cache alone.
	var quoteStore service.QuoteStore
	var candleStore service.CandleStore
	if db.Pool != nil {
		quoteRepo := repository.NewQuoteRepository(db.Pool, tracer)
		candleRepo := repository.NewCandleRepository(db.Pool, tracer)
		if err := quoteRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run quote migrations: %v", err)
		}
		if err := candleRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run candle migrations: %v", err)
		}
		quoteStore = quoteRepo
		candleStore = candleRepo
	}

	// Create providers and services
	providers := newProvidersFunc(cfg, tracer)

	quoteProviders := make(map[domain.AssetClass]service.QuoteProvider, len(providers))
	for class, p := range providers {
		quoteProviders[class] = p
	}
	quoteService := service.NewQuoteService(tracer, quoteStore, cache.Client, quoteProviders)

	newsProvider := provider.NewNewsProvider(provider.Config{
		Timeout: time.Duration(cfg.ProviderTimeoutSecs) * time.Second,
	}, cfg.CryptoNewsFeeds, cfg.EquityNewsFeeds, tracer)

	aggregator := service.NewAggregator(
		tracer,
		providers,
		newsProvider,
		indicator.NewEngine(),
		quoteService,
		candleStore,
		cfg.FetchTimeoutSecs,
	)

	// Start quote refresher (background goroutine, stopped by ctx cancel)
	refresher := job.NewRefresher(tracer, quoteService, cfg.RefreshSchedule, cfg.RefreshIntervalSecs)
	startRefresherFunc(refresher, ctx)

	// Create handlers and routes
	h := handler.New(tracer, aggregator, quoteService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("marketpulse"))
	r.Use(handler.APIKeyAuth(cfg.APIKey))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
