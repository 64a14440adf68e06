package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dbh, err := repository.Open(ctx, cfg.Database, nil)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer dbh.Close(nil)

	if err := dbh.HealthCheck(ctx, 1*time.Second, nil); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Infow("DB health OK", "driver", cfg.Database.Driver)
}
