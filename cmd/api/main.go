package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/meloogk/O-Maillot-Backend/internal/auth"
	"github.com/meloogk/O-Maillot-Backend/internal/config"
	"github.com/meloogk/O-Maillot-Backend/internal/currency"
	"github.com/meloogk/O-Maillot-Backend/internal/db"
	"github.com/meloogk/O-Maillot-Backend/internal/httpserver"
	"github.com/meloogk/O-Maillot-Backend/internal/loyalty"
	cartrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/cart"
	invoicerepo "github.com/meloogk/O-Maillot-Backend/internal/repository/invoice"
	orderrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/order"
	paymentrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/payment"
	productrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/product"
	userrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/user"
	cartsvc "github.com/meloogk/O-Maillot-Backend/internal/service/cart"
	invoicesvc "github.com/meloogk/O-Maillot-Backend/internal/service/invoice"
	ordersvc "github.com/meloogk/O-Maillot-Backend/internal/service/order"
	paymentsvc "github.com/meloogk/O-Maillot-Backend/internal/service/payment"
	productsvc "github.com/meloogk/O-Maillot-Backend/internal/service/product"
	referralsvc "github.com/meloogk/O-Maillot-Backend/internal/service/referral"
	rewardssvc "github.com/meloogk/O-Maillot-Backend/internal/service/rewards"
	usersvc "github.com/meloogk/O-Maillot-Backend/internal/service/user"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var rateCache currency.RateCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		rateCache = currency.NewRedisRateCache(rdb, cfg.RateCacheTTL)
	}
	converter := currency.New(cfg.ExchangeRateBaseURL, cfg.ExchangeRateAPIKey, cfg.ExchangeRateTimeout, rateCache, logger)
	policy := loyalty.NewPolicy(converter)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := userrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	paymentRepo := paymentrepo.NewPostgres(dbpool)
	invoiceRepo := invoicerepo.NewPostgres(dbpool)

	deps := httpserver.Deps{
		Users:    usersvc.New(userRepo, tokens),
		Products: productsvc.New(productRepo),
		Carts:    cartsvc.New(cartRepo, productRepo),
		Orders:   ordersvc.New(orderRepo, cartRepo, productRepo, userRepo),
		Payments: paymentsvc.New(paymentRepo, orderRepo, policy),
		Invoices: invoicesvc.New(invoiceRepo, paymentRepo),
		Referral: referralsvc.New(userRepo),
		Rewards:  rewardssvc.New(userRepo, orderRepo, converter),
		Tokens:   tokens,
	}

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps, cfg.CORSOrigins)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
