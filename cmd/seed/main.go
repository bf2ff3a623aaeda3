package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/meloogk/O-Maillot-Backend/internal/config"
	"github.com/meloogk/O-Maillot-Backend/internal/db"
	"github.com/meloogk/O-Maillot-Backend/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
