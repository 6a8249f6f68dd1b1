// Command api starts the SmartScheduler HTTP/WebSocket server: load config,
// wire repositories and services, build the router, serve with graceful
// shutdown. Follows backend/cmd/api/main.go's startup sequence.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/smartscheduler/internal/config"
	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/externals"
	"github.com/pageza/smartscheduler/internal/handlers"
	"github.com/pageza/smartscheduler/internal/realtime"
	"github.com/pageza/smartscheduler/internal/repository"
	"github.com/pageza/smartscheduler/internal/repository/postgres"
	"github.com/pageza/smartscheduler/internal/services"
	"github.com/pageza/smartscheduler/internal/weights"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := log.New(os.Stdout, "smartscheduler: ", log.LstdFlags)

	db, err := postgres.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	repos := repository.Repositories{
		Contractor:   postgres.NewContractorRepository(db),
		Job:          postgres.NewJobRepository(db),
		Assignment:   postgres.NewAssignmentRepository(db),
		Audit:        postgres.NewAuditRecommendationRepository(db),
		EventLog:     postgres.NewEventLogRepository(db),
		SystemConfig: postgres.NewSystemConfigurationRepository(db),
		Weights:      postgres.NewWeightsConfigRepository(db),
	}

	weightsCache := mustLoadWeightsCache(cfg, repos.Weights, logger)

	distance := externals.NewDistanceClient(externals.StubHTTPCaller{}, cfg)
	matrix := externals.NewETAMatrix(externals.StubMatrixBatcher{}, redisClient, cfg)

	hub := realtime.NewHub(logger)
	publisher := realtime.NewPublisher(hub, repos.EventLog, logger)

	recommendationSvc := services.NewRecommendationService(
		repos.Contractor, repos.Job, repos.Assignment, repos.Audit,
		weightsCache, distance, matrix, publisher, logger,
	)
	mutationSvc := services.NewMutationService(
		repos.Contractor, repos.Job, repos.Assignment, repos.Audit, publisher, logger,
	)

	h := handlers.NewHandlers(
		handlers.NewRecommendationHandler(recommendationSvc, logger),
		handlers.NewMutationHandler(mutationSvc, logger),
		handlers.NewRealtimeHandler(hub, logger),
		logger,
	)
	router := h.SetupRoutes()

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Printf("Starting API server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Println("Server exited")
}

// mustLoadWeightsCache seeds the weights cache from the active
// WeightsConfig row, falling back to cfg's scoring defaults (version 1) if
// none has been persisted yet, the way a fresh deployment bootstraps its
// first configuration.
func mustLoadWeightsCache(cfg *config.Config, repo repository.WeightsConfigRepo, logger *log.Logger) *weights.Cache {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	active, err := repo.GetActive(ctx)
	if err != nil {
		logger.Printf("weights: no active config found, seeding defaults: %v", err)
		active = &domain.WeightsConfig{
			Version:            1,
			IsActive:           true,
			AvailabilityWeight: cfg.DefaultAvailabilityWeight,
			RatingWeight:       cfg.DefaultRatingWeight,
			DistanceWeight:     cfg.DefaultDistanceWeight,
			TieBreakers:        []string{"earliestStart", "rating"},
		}
	}

	cache, err := weights.NewCache(*active)
	if err != nil {
		log.Fatalf("Failed to initialize weights cache: %v", err)
	}
	return cache
}
