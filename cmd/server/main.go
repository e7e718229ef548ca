package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/salespulse/internal/api"
	"github.com/Rrens/salespulse/internal/audit"
	"github.com/Rrens/salespulse/internal/config"
	"github.com/Rrens/salespulse/internal/logging"
	"github.com/Rrens/salespulse/internal/ratelimit"
	"github.com/Rrens/salespulse/internal/repository/postgres"
	"github.com/Rrens/salespulse/internal/repository/redis"
	"github.com/Rrens/salespulse/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logFile, err := logging.Setup(cfg.Logging, cfg.Server.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("env", cfg.Server.Env).
		Msg("Starting SalesPulse API server")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Rate limit store
	var limitStore ratelimit.Store
	var redisClient *redis.Client
	switch cfg.RateLimit.Store {
	case "redis":
		redisClient, err = redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		limitStore = redis.NewRateLimiter(redisClient)
	default:
		memory := ratelimit.NewMemoryStore()
		memory.Start(ctx, cfg.RateLimit.SweepInterval)
		limitStore = memory
	}
	log.Info().Str("store", cfg.RateLimit.Store).Msg("Rate limiter ready")

	// Audit sinks
	sinks := []audit.Sink{
		audit.NewRepositorySink(postgres.NewSecurityEventRepository(db)),
		audit.NewLogSink(),
	}
	if cfg.Audit.Kafka.Enabled() {
		kafkaSink := audit.NewKafkaSink(cfg.Audit.Kafka.Brokers, cfg.Audit.Kafka.Topic)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info().Strs("brokers", cfg.Audit.Kafka.Brokers).Str("topic", cfg.Audit.Kafka.Topic).Msg("Publishing security events to Kafka")
	}
	auditLogger := audit.NewLogger(audit.Options{
		BufferSize:   cfg.Audit.BufferSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
	}, sinks...)

	// File storage
	files, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	// Initialize router
	router := api.NewRouter(cfg, db, redisClient, limitStore, auditLogger, files)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Flush queued security events before the sinks close
	if err := auditLogger.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Audit log did not drain")
	}

	log.Info().Msg("Server stopped")
}
