package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"patient-manager/internal/agent"
	"patient-manager/internal/config"
	"patient-manager/internal/logger"
	"patient-manager/internal/patient"
	"patient-manager/internal/platform/database"
	"patient-manager/internal/platform/middleware"
	"patient-manager/internal/platform/mqtt"
	"patient-manager/internal/platform/redis"
	"patient-manager/internal/platform/respond"
	"patient-manager/internal/platform/telegram"
	"patient-manager/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "patient-manager: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "patient-manager")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	var (
		db   *sql.DB
		repo patient.Repository
	)
	if cfg.UseDatabase() {
		db, err = database.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL, log); err != nil {
			return err
		}
		repo = patient.NewRepository(db)
	} else {
		log.Warn("DATABASE_URL is not set, using the in-memory store")
		repo = patient.NewMemoryRepository()
	}

	// 2. Alert fan-out
	var publishers []patient.AlertPublisher

	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publishers = append(publishers, redis.NewAlertStream(rdb, cfg.AlertStream))
		log.Info("Publishing alerts to Redis stream", zap.String("stream", cfg.AlertStream))
	}

	var documents report.DocumentSender
	if cfg.TelegramToken != "" {
		tg := telegram.NewClient(cfg.TelegramBaseURL, cfg.TelegramToken, log)
		documents = tg
		if cfg.NurseChatID != 0 {
			publishers = append(publishers, telegram.NewAlertNotifier(tg, cfg.NurseChatID))
		} else {
			log.Warn("NURSE_CHAT_ID is not set, critical alerts will not be sent to Telegram")
		}
	}

	// 3. Services
	patientSvc := patient.NewService(repo, log, publishers...)
	if cfg.Seed {
		n, err := patientSvc.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if n > 0 {
			log.Info("Seeded initial patients", zap.Int("count", n))
		}
	}

	reportSvc := report.NewService(repo, documents, cfg.NurseChatID, cfg.ReportFontPath, log)
	assistant := agent.NewAssistant(repo, log)
	nurse := agent.NewNurse(agent.DefaultKnowledge())

	if cfg.MQTTBroker != "" {
		mc, err := mqtt.NewClient(mqtt.Options{
			Broker:   cfg.MQTTBroker,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, log)
		if err != nil {
			return err
		}
		defer mc.Disconnect()

		if err := mqtt.NewVitalsIngestor(patientSvc, log).Start(mc, cfg.MQTTTopicPrefix); err != nil {
			return err
		}
	}

	// 4. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/healthz", healthz(db))
	r.Route("/api", func(r chi.Router) {
		patient.RegisterRoutes(r, patient.NewHandler(patientSvc, log))
		agent.RegisterRoutes(r, agent.NewHandler(assistant, nurse, patientSvc, log))
		report.RegisterRoutes(r, report.NewHandler(reportSvc, log))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
