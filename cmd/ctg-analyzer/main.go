package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Krimson/ctg-analyzer/internal/analyzer"
	"github.com/Krimson/ctg-analyzer/internal/config"
	"github.com/Krimson/ctg-analyzer/internal/handler"
	"github.com/Krimson/ctg-analyzer/internal/health"
	"github.com/Krimson/ctg-analyzer/internal/notify"
	"github.com/Krimson/ctg-analyzer/internal/repository"
	"github.com/Krimson/ctg-analyzer/internal/websocket"

	_ "github.com/Krimson/ctg-analyzer/docs" // Swagger docs
)

// @title CTG Analyzer API
// @version 1.0
// @description API для загрузки записей КТГ и посегментного анализа.
// @description Запись режется на сегменты фиксированной длительности; для каждого сегмента
// @description считаются базовая линия, вариабельность, акселерации, децелерации и заключение.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(tint.NewHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		return err
	}

	healthServer := health.NewHealthServer()

	// Хранилище сырых записей: Redis или память
	var store analyzer.RecordingStore
	if cfg.Redis.Addr != "" {
		redisRepo := repository.NewRedisRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.RecordingTTL(), logger)
		defer redisRepo.Close()

		if err := redisRepo.CheckConnection(ctx); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		healthServer.AddProbe("redis", redisRepo.CheckConnection)
		store = redisRepo
		logger.Info("connected to Redis", "addr", cfg.Redis.Addr)
	} else {
		store = repository.NewMemoryStore(cfg.RecordingTTL())
		logger.Warn("REDIS_ADDR not set, recordings are kept in memory")
	}

	// Каталог записей: PostgreSQL или память
	var catalog analyzer.Catalog
	if cfg.Postgres.DSN != "" {
		postgresRepo, err := repository.NewPostgreSQLRepository(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			return err
		}
		defer postgresRepo.Close()

		healthServer.AddProbe("postgres", postgresRepo.CheckConnection)
		catalog = postgresRepo
		logger.Info("connected to PostgreSQL")
	} else {
		catalog = repository.NewMemoryCatalog()
		logger.Warn("POSTGRES_DSN not set, catalog is kept in memory")
	}

	hub := websocket.NewHub(nil, cfg.ReplayInterval(), logger)
	publishers := []notify.Publisher{hub}

	if cfg.MQTT.Broker != "" {
		mqttPublisher, err := notify.NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic, byte(cfg.MQTT.QoS))
		if err != nil {
			logger.Warn("MQTT notifications disabled", "broker", cfg.MQTT.Broker, "error", err)
		} else {
			healthServer.AddProbe("mqtt", func(context.Context) error {
				if !mqttPublisher.IsConnected() {
					return errors.New("mqtt broker disconnected")
				}
				return nil
			})
			publishers = append(publishers, mqttPublisher)
			logger.Info("connected to MQTT broker", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
		}
	}
	notifier := notify.NewMulti(publishers...)
	defer notifier.Close()

	service, err := analyzer.NewService(opts, store, catalog, notifier, logger)
	if err != nil {
		return err
	}
	hub.SetSource(service)
	go hub.Run(ctx)

	// gRPC: только health и reflection
	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	grpcAddress := fmt.Sprintf(":%s", cfg.GRPCPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}

	router := handler.NewRouter(handler.NewHTTPHandler(service, logger), hub, healthServer)
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrChan := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "addr", grpcAddress)
		if err := grpcServer.Serve(listener); err != nil {
			serverErrChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr, "swagger", "/swagger/index.html")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	healthServer.SetServingStatus("")
	healthServer.SetServingStatus(health.ServiceName)

	var runErr error
	select {
	case runErr = <-serverErrChan:
		logger.Error("server error", "error", runErr)
	case <-ctx.Done():
		logger.Info("received shutdown signal, starting graceful shutdown")
	}

	// Завершает Watch-потоки, иначе GracefulStop ждет их до таймаута
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server forced to shutdown", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		logger.Warn("graceful shutdown timeout, forcing stop")
		grpcServer.Stop()
	}

	return runErr
}
