/**
 * @description
 * This is the main entry point for the registry-service. It is responsible
 * for initializing all components of the service: configuration, the
 * PostgreSQL pool, the Redis session store, the RabbitMQ producer, the
 * regions API client, the core application service and the HTTP server.
 * Running with the `bootstrap` argument provisions the super admin account
 * and exits instead of serving.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for refresh sessions.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 * - pkg/rabbitmq, pkg/regionsclient: Broker producer and geography client.
 */

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ardhi/registry-service/internal/api"
	"github.com/ardhi/registry-service/internal/app"
	"github.com/ardhi/registry-service/internal/config"
	"github.com/ardhi/registry-service/internal/store"
	"github.com/ardhi/registry-service/pkg/rabbitmq"
	"github.com/ardhi/registry-service/pkg/regionsclient"
)

func main() {
	// The .env file is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Redis backs the refresh sessions; without it logins cannot issue
	// refresh tokens, so a missing connection is fatal.
	redisOptions, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"redis url parse failed\" err=%v", err)
	}
	redisClient := redis.NewClient(redisOptions)
	defer redisClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatalf("level=fatal component=bootstrap msg=\"redis connection failed\" err=%v", err)
	}
	cancelPing()
	log.Println("level=info component=bootstrap msg=\"redis connected\"")

	repo := store.NewPostgresRepository(dbpool)
	sessions := store.NewRedisSessionStore(redisClient, cfg.RedisSessionPrefix)

	// The broker is best-effort: notifications persist either way and only
	// the live push degrades.
	var producer rabbitmq.Publisher
	eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; live pushes disabled\" err=%v", err)
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		defer eventProducer.Close()
		producer = eventProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	service := app.NewService(repo, sessions, producer,
		cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	if len(os.Args) > 1 && os.Args[1] == "bootstrap" {
		runBootstrap(service, cfg)
		return
	}

	var regions *regionsclient.Client
	if strings.TrimSpace(cfg.RegionsAPIBaseURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"regions API not configured; /api/regions disabled\" env=REGIONS_API_BASE_URL")
	} else {
		regions = regionsclient.NewClient(cfg.RegionsAPIBaseURL, cfg.RegionsAPIKey)
	}

	handler := api.NewHandler(service, regions, cfg.UploadDir, cfg.MaxUploadMB)
	router := api.NewRouter(handler, repo, cfg.JWTSecret)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("level=info component=bootstrap msg=\"registry-service listening\" port=%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("level=fatal component=bootstrap msg=\"server failed\" err=%v", err)
		}
	}()

	<-shutdown
	log.Println("level=info component=bootstrap msg=\"shutting down\"")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error component=bootstrap msg=\"graceful shutdown failed\" err=%v", err)
	}
}

// runBootstrap provisions the configured super admin account and exits.
func runBootstrap(service *app.Service, cfg config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, created, err := service.EnsureSuperAdmin(ctx, app.SuperAdminSeed{
		FullName:   cfg.SuperAdminName,
		Email:      cfg.SuperAdminEmail,
		Password:   cfg.SuperAdminPassword,
		NationalID: cfg.SuperAdminNationalID,
		KraPin:     cfg.SuperAdminKraPin,
	})
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"super admin provisioning failed\" err=%v", err)
	}
	if created {
		log.Printf("level=info component=bootstrap msg=\"super admin created\" user_id=%s", user.ID)
	} else {
		log.Printf("level=info component=bootstrap msg=\"super admin already exists\" user_id=%s", user.ID)
	}
}
