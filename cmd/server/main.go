package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gautamkshah/wise-academy/internal/api"
	"github.com/gautamkshah/wise-academy/internal/app/service"
	"github.com/gautamkshah/wise-academy/internal/app/worker"
	"github.com/gautamkshah/wise-academy/internal/common/security"
	"github.com/gautamkshah/wise-academy/internal/domain/repository"
	"github.com/gautamkshah/wise-academy/internal/platform/config"
	"github.com/gautamkshah/wise-academy/internal/platform/database"
	"github.com/gautamkshah/wise-academy/internal/platform/fetcher"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"
	"github.com/gautamkshah/wise-academy/internal/platform/queue"
)

func main() {
	// 1. Configuration and logging
	cfg := config.Load()
	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	verifier, err := security.NewIdentityVerifierFromConfig(cfg.IdentityAlg, cfg.IdentitySecret, cfg.IdentityPublicKey)
	if err != nil {
		appLog.Fatal("Invalid identity verifier configuration", "alg", cfg.IdentityAlg, "error", err)
	}

	// 2. Database
	database.Connect(appLog)
	defer database.Close(appLog)
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, database.DB); err != nil {
		appLog.Fatal("Schema migration failed", "error", err)
	}
	migrateCancel()

	// 3. Redis
	queue.ConnectRedis(appLog)
	defer queue.CloseRedis(appLog)
	syncQueue := queue.NewSyncQueue(queue.RDB, cfg.SyncQueueName)

	// 4. Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)
	statsRepo := repository.NewPgStatsRepository(database.DB)

	// 5. Platform clients
	httpClient := fetcher.NewHTTPClient(cfg.FetchTimeout)
	leetCode := fetcher.NewLeetCode(cfg.LeetCodeGraphQLURL, cfg.LeetCodeRecentLimit, httpClient, appLog)
	codeForces := fetcher.NewCodeForces(cfg.CodeForcesAPIURL, httpClient, appLog)
	codeChef := fetcher.NewCodeChef(cfg.CodeChefBaseURL, cfg.CodeChefContestsURL, httpClient, appLog)

	// 6. Services
	statsService := service.NewStatsService(userRepo, statsRepo, progressRepo,
		cfg.FetchTimeout, cfg.SweepConcurrency, appLog, leetCode, codeForces, codeChef)
	userService := service.NewUserService(userRepo, statsRepo, statsService, appLog)
	authService := service.NewAuthService(userRepo, verifier, syncQueue, appLog)
	progressService := service.NewProgressService(userService, problemRepo, progressRepo, statsService,
		cfg.FetchTimeout, appLog, leetCode, codeForces)
	problemService := service.NewProblemService(problemRepo)
	contestService := service.NewContestService(queue.RDB, cfg.ContestCacheKey, cfg.ContestCacheTTL,
		cfg.FetchTimeout, appLog, codeForces, leetCode, codeChef)

	// 7. Background work
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	syncWorker := worker.NewSyncWorker(queue.RDB, syncQueue, statsService, cfg.SyncLockPrefix, cfg.SyncLockTTL, appLog)
	go syncWorker.Start(bgCtx)

	scheduler := worker.NewScheduler(cfg.SweepCron, queue.RDB, cfg.SweepLockKey, cfg.SweepLockTTL,
		statsService, userRepo, syncQueue, appLog)
	if err := scheduler.Start(bgCtx); err != nil {
		appLog.Fatal("Failed to start scheduler", "error", err)
	}

	// 8. HTTP server
	router := api.NewRouter(verifier, api.Services{
		Auth:     authService,
		Users:    userService,
		Progress: progressService,
		Problems: problemService,
		Sweeps:   scheduler,
		Contests: contestService,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		appLog.Info("Server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Could not listen", "port", cfg.APIPort, "error", err)
		}
	}()

	<-stop

	appLog.Info("Shutting down server")
	bgCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server shutdown failed", "error", err)
		return
	}
	appLog.Info("Server and background workers stopped")
}
