package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/controller"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/middleware"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/http/router"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/postgres"
	"github.com/api-sage/wallet-transaction-processor/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-transaction-processor/src/internal/config"
	"github.com/api-sage/wallet-transaction-processor/src/internal/logger"
	"github.com/api-sage/wallet-transaction-processor/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	balanceRepo := postgres.NewBalanceRepository(db)
	idempotencyRepo := postgres.NewIdempotencyRepository(db)
	atomicRepo := postgres.NewAtomicRepository(db)

	retention := time.Duration(cfg.IdempotencyTTLHours) * time.Hour
	balanceService := services.NewBalanceService(balanceRepo, cfg.StartingBalance)
	transactionService := services.NewTransactionService(idempotencyRepo, atomicRepo, cfg.StartingBalance, retention)

	go sweepExpired(context.Background(), idempotencyRepo, time.Duration(cfg.ExpirySweepMinutes)*time.Minute)

	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKeyHash)
	mux := router.New(
		controller.NewBalanceController(balanceService),
		controller.NewTransactionController(transactionService),
		authMiddleware,
	)

	logger.Info("server starting", logger.Fields{
		"addr": cfg.HTTPAddr,
	})
	if err := http.ListenAndServe(cfg.HTTPAddr, mux); err != nil {
		log.Fatalf("serve http: %v", err)
	}
}

func sweepExpired(ctx context.Context, repo repo_interfaces.IdempotencyRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := repo.DeleteExpired(ctx); err != nil {
				logger.Error("expired idempotency sweep failed", err, nil)
			}
		}
	}
}
