package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arena-chat-service/internal/adapters/kafka"
	"arena-chat-service/internal/adapters/objectstore"
	"arena-chat-service/internal/api/handlers"
	"arena-chat-service/internal/api/routes"
	"arena-chat-service/internal/chat"
	"arena-chat-service/internal/config"
	"arena-chat-service/internal/database"
	"arena-chat-service/internal/outbox"
	"arena-chat-service/internal/presence"
	"arena-chat-service/internal/registry"
	"arena-chat-service/internal/room"
	"arena-chat-service/internal/session"
	"arena-chat-service/internal/store"
	"arena-chat-service/internal/transport"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.Info("Starting arena chat server")

	db, err := database.NewMySQLConnection(cfg.Database.DSN)
	if err != nil {
		slog.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	gormStore := store.NewGormStore(db)
	gate := session.NewGate(cfg.JWT.Secret, cfg.JWT.ExpirationTime)

	// Realtime core
	reg := registry.New()
	manager := transport.NewManager()
	roomRouter := room.NewRouter(reg, manager)

	box := outbox.New(1024)
	box.Start(context.Background())

	broadcaster := presence.NewBroadcaster(reg, manager, box).
		WithStatus(presence.NewRedisStatus(redisClient))

	chatHandler := chat.NewHandler(reg, roomRouter, gormStore, gormStore, manager, box).
		WithPusher(broadcaster)

	var auditPublisher *kafka.EventPublisher
	if cfg.Kafka.Enabled {
		auditPublisher = kafka.NewEventPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic))
		chatHandler.WithAudit(auditPublisher)
		slog.Info("Kafka audit stream enabled", "topic", cfg.Kafka.AuditTopic)
	}

	var uploadHandler *handlers.UploadHandler
	if cfg.MinIO.Enabled {
		objects, err := objectstore.NewClient(
			cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket, cfg.MinIO.UseSSL,
		)
		if err != nil {
			slog.Error("Failed to connect to MinIO", "error", err)
			os.Exit(1)
		}
		uploadHandler = handlers.NewUploadHandler(objects)
	}

	router := routes.NewRouter(
		handlers.NewWSHandler(gate, reg, manager, roomRouter, chatHandler, broadcaster),
		handlers.NewAuthHandler(gormStore, gate),
		handlers.NewFriendHandler(gormStore, gormStore, gormStore, broadcaster),
		uploadHandler,
		gate,
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Sockets are down; stop the side-effect worker after its in-flight
	// task finishes.
	box.Stop()

	if auditPublisher != nil {
		if err := auditPublisher.Close(); err != nil {
			slog.Error("Kafka writer close failed", "error", err)
		}
	}

	slog.Info("Server stopped")
}
