package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-user-accounts/internal/config"
	"github.com/go-user-accounts/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-user-accounts/internal/infrastructure/jwt"
	"github.com/go-user-accounts/internal/infrastructure/notify"
	"github.com/go-user-accounts/internal/infrastructure/postgres"
	"github.com/go-user-accounts/internal/infrastructure/smtp"
	"github.com/go-user-accounts/internal/infrastructure/sns"
	"github.com/go-user-accounts/internal/pkg/logger"
	"github.com/go-user-accounts/internal/pkg/password"
	transporthttp "github.com/go-user-accounts/internal/transport/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogPath, cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx := context.Background()

	userRepo, closeStore, err := openUserStore(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer closeStore()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	// SNS SMS sender (optional, email is always sent).
	var smsSender sns.SMSSender
	if cfg.SNSEnabled {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			smsSender = sender
		} else {
			zlog.Warn("SNS sender not available", zap.Error(err))
		}
	}
	notifier := notify.NewAsync(
		notify.NewActivation(smtp.NewMailer(cfg), smsSender),
		cfg.NotifyTimeout,
		zlog,
	)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		UserRepo:    userRepo,
		Hasher:      password.NewHasher(cfg.BcryptCost, cfg.HashConcurrency),
		JWTProvider: jwtProvider,
		Notifier:    notifier,
		Logger:      zlog,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	zlog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		zlog.Warn("pending activation notices dropped", zap.Error(err))
	}
	zlog.Info("Server stopped")
	return nil
}

// openUserStore connects the backend selected by STORE_DRIVER and makes sure its schema exists.
func openUserStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (transporthttp.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.InitDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewUserRepo(pool, zlog)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	default:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Bootstrap DynamoDB tables (creates them if they don't exist).
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, zlog)
		return dynamo.NewUserRepo(client, cfg.DynamoTables.Users, cfg.DynamoTables.UserUniques), func() {}, nil
	}
}
