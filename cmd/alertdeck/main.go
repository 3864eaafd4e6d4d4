package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm/logger"

	"github.com/alertdeck/alertdeck/internal/config"
	"github.com/alertdeck/alertdeck/internal/database"
	"github.com/alertdeck/alertdeck/internal/device"
	"github.com/alertdeck/alertdeck/internal/engine"
	"github.com/alertdeck/alertdeck/internal/handlers"
	"github.com/alertdeck/alertdeck/internal/middleware"
	"github.com/alertdeck/alertdeck/internal/notify"
	"github.com/alertdeck/alertdeck/internal/poller"
	"github.com/alertdeck/alertdeck/internal/stream"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	passwordHash, err := middleware.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	if err := database.Connect(cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.InitializeDefaults(); err != nil {
		log.Fatalf("Failed to initialize defaults: %v", err)
	}

	// Stored device settings override the environment endpoints.
	baseURL := cfg.DeviceBaseURL
	wsURL := cfg.DeviceWSURL
	pollInterval := cfg.PollInterval
	if stored, err := database.GetDeviceSettings(); err == nil {
		if stored.BaseURL != "" {
			baseURL = stored.BaseURL
		}
		if stored.WSURL != "" {
			wsURL = stored.WSURL
		}
		if stored.PollIntervalSeconds > 0 {
			pollInterval = time.Duration(stored.PollIntervalSeconds) * time.Second
		}
	}
	log.Printf("Device endpoints: rest=%s ws=%s poll=%s", baseURL, wsURL, pollInterval)

	notifier := notify.NewSlackNotifier()

	eng := engine.New(engine.Options{Notifier: notifier})
	eng.Start()

	deviceClient := device.NewClient(baseURL)

	mux := stream.NewMultiplexer(wsURL, stream.Options{
		ReconnectAttempts: cfg.ReconnectAttempts,
		ReconnectDelay:    cfg.ReconnectDelay,
		OnConnected:       eng.SetConnected,
	})
	topics, err := config.LoadTopics(cfg.TopicsFile)
	if err != nil {
		log.Fatalf("Failed to load topics: %v", err)
	}
	for _, topic := range topics {
		mux.OnEvent(topic.Name, eng.HandleEvent)
	}
	if err := mux.ConnectAll(topics); err != nil {
		log.Fatalf("Failed to connect push topics: %v", err)
	}

	pollCtx, cancelPoll := context.WithCancel(context.Background())
	snapshotPoller := poller.New(deviceClient, pollInterval, eng.HandleSnapshot)
	go snapshotPoller.Run(pollCtx)

	jwtAuth := middleware.NewJWTAuth(middleware.JWTAuthConfig{
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: passwordHash,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryHours:    cfg.JWTExpiryHours,
		SkipPaths:         []string{"/health", "/auth/login", "/metrics"},
	})

	httpMux := http.NewServeMux()
	handlers.SetupRoutes(httpMux,
		handlers.NewAuthHandler(jwtAuth),
		handlers.NewAlertsHandler(eng, deviceClient),
		handlers.NewSettingsHandler(notifier),
	)
	httpMux.Handle("/metrics", promhttp.Handler())

	handler := middleware.RequestID(middleware.NewCORS().Wrap(jwtAuth.Wrap(httpMux)))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Starting alertdeck on port %d", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	cancelPoll()
	mux.DisconnectAll()
	eng.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	log.Println("Shutdown complete")
}
