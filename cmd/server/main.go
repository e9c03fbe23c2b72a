package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/krakosik/demoday/internal/client"
	"github.com/krakosik/demoday/internal/controller"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/repository"
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := dto.LoadConfig()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := client.NewClients(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to create clients: %v", err)
	}
	repositories, err := openRepositories(cfg, clients)
	if err != nil {
		_ = clients.Close()
		logrus.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	logrus.Infof("Using %s store", cfg.StoreDriver)

	services := service.NewServices(repositories, cfg, clients)
	controllers := controller.NewControllers(services)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			controller.AdminSecretHeader,
		},
	}))
	e.Use(controller.RequestLogger())
	controllers.Route(e)

	go sweepSessions(ctx, services.Voting())

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logrus.Infof("HTTP server listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("HTTP server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Error shutting down HTTP server: %v", err)
	}
	if err := clients.Close(); err != nil {
		logrus.Errorf("Error closing clients: %v", err)
	}
	_ = repositories.Close()
}

func openRepositories(cfg dto.Config, clients client.Clients) (repository.Repositories, error) {
	switch cfg.StoreDriver {
	case dto.StoreDriverPostgres:
		return repository.OpenPostgres(cfg.DatabaseURL)
	case dto.StoreDriverSQLite:
		return repository.OpenSQLite(cfg.SQLitePath)
	case dto.StoreDriverFirestore:
		return repository.NewFirestoreRepositories(clients.Firestore()), nil
	case dto.StoreDriverMemory:
		logrus.Warn("Memory store selected; ballots will not survive a restart")
		return repository.NewMemoryRepositories(), nil
	default:
		return nil, fmt.Errorf("%w: unknown STORE_DRIVER %q", dto.ErrConfiguration, cfg.StoreDriver)
	}
}

func configureLogging(cfg dto.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func sweepSessions(ctx context.Context, voting service.VotingService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			voting.SweepSessions()
		}
	}
}
