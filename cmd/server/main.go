package main

import (
	"contest_hub/internal/api"
	"contest_hub/internal/app/service"
	"contest_hub/internal/app/worker"
	"contest_hub/internal/common/security"
	"contest_hub/internal/domain/repository"
	"contest_hub/internal/platform/config"
	"contest_hub/internal/platform/database"
	"contest_hub/internal/platform/identity"
	"contest_hub/internal/platform/payment"
	"contest_hub/internal/platform/queue"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
)

func main() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database (runs migrations)
	db, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer db.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	rdb, err := queue.ConnectRedis(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Could not initialize Redis: %v", err)
	}
	defer rdb.Close()
	fmt.Println("Redis connected.")

	// 5. External providers
	verifier, err := identity.NewVerifier(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Could not initialize identity provider: %v", err)
	}
	gateway, err := payment.NewGateway(cfg)
	if err != nil {
		log.Fatalf("Could not initialize payment gateway: %v", err)
	}
	log.Printf("Identity provider: %s, payment gateway: %s", cfg.IdentityProvider, gateway.Name())

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	contestRepo := repository.NewPgContestRepository(db)
	paymentRepo := repository.NewPgPaymentRepository(db)
	leaderboardCache := repository.NewRedisLeaderboardCache(rdb, cfg.LeaderboardCacheTTL)
	events := queue.NewRedisEventPublisher(rdb, cfg.EventQueueName)

	// 7. Initialize Services
	userService := service.NewUserService(userRepo)
	services := api.Services{
		Users:   userService,
		Contest: service.NewContestService(contestRepo, userRepo, events),
		Payment: service.NewPaymentService(paymentRepo, contestRepo, gateway, events, cfg.SiteDomain),
		Profile: service.NewProfileService(userRepo, contestRepo, paymentRepo, leaderboardCache),
	}
	if cfg.IdentityProvider == config.IdentityJWT {
		services.Auth = service.NewAuthService(userService)
	}

	// 8. Initialize Event Worker (as a goroutine)
	eventWorker := worker.NewEventWorker(rdb, leaderboardCache, cfg.EventQueueName, cfg.EventDedupTTL)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go eventWorker.Start(workerCtx)
	fmt.Println("Event worker started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(services, verifier, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
