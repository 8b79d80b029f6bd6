package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goserg/rolegate/internal/auth/service"
	"github.com/goserg/rolegate/internal/auth/storage"
	"github.com/goserg/rolegate/internal/auth/storage/postgres"
	"github.com/goserg/rolegate/internal/auth/storage/sqlite"
	"github.com/goserg/rolegate/internal/auth/token"
	"github.com/goserg/rolegate/internal/config"
	"github.com/goserg/rolegate/internal/logger"
	"github.com/goserg/rolegate/internal/web"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/server.toml", "path to server config")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	l := logger.New(cfg.Server.Debug)

	ctx := context.Background()
	authStorage, err := newStorage(ctx, l, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer authStorage.Close()

	if err := authStorage.EnsureRoles(ctx, cfg.Auth.Roles); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	tokenCfg := token.Config{
		Secret: []byte(cfg.Auth.Secret),
		TTL:    cfg.Auth.TokenTTL,
	}
	authService := service.New(l, service.Config{
		BcryptCost:   cfg.Auth.BcryptCost,
		DefaultRole:  cfg.Auth.DefaultRole,
		RootUsername: cfg.Auth.RootUsername,
		RootPassword: cfg.Auth.RootPassword,
	}, authStorage, token.NewIssuer(tokenCfg))
	if err := authService.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	server := web.New(l, cfg.Server, authService, token.NewVerifier(tokenCfg))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-stop:
		l.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return errors.Join(server.Shutdown(shutdownCtx), <-serveErr)
}

func newStorage(ctx context.Context, l *logrus.Logger, cfg config.Storage) (storage.AuthStorage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, l, cfg.Postgres)
	default:
		return sqlite.New(l, cfg.SqliteFile)
	}
}
