package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/PratikDhanave/badge-clock-relay/internal/config"
	"github.com/PratikDhanave/badge-clock-relay/internal/httpserver"
	"github.com/PratikDhanave/badge-clock-relay/internal/humand"
	"github.com/PratikDhanave/badge-clock-relay/internal/logging"
	"github.com/PratikDhanave/badge-clock-relay/internal/notify"
	"github.com/PratikDhanave/badge-clock-relay/internal/relay"
	"github.com/PratikDhanave/badge-clock-relay/internal/store"
)

// main boots the relay: config → logging → audit store → pipeline → worker → HTTP server.
func main() {
	// Load runtime config from environment (and .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logFile := logging.Setup(logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxMB,
		MaxBackups: cfg.LogBackups,
	})
	defer logFile.Close()

	log.Println("=== HIKCENTRAL → HUMAND RELAY STARTED ===")
	log.Printf("DRY_RUN = %v", cfg.DryRun)
	log.Printf("SEND_INTERVAL = %s", cfg.SendInterval)
	log.Printf("DEVICES = entrance %q, exit %q", cfg.EntranceDevice, cfg.ExitDevice)

	audit, err := openAuditStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if audit != nil {
		defer audit.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared pipeline state, owned here and injected into both sides.
	dedup := relay.NewDedupStore(cfg.DedupRetention)
	queue := relay.NewQueue()
	ingestor := relay.NewIngestor(relay.Classifier{
		EntranceDevice: cfg.EntranceDevice,
		ExitDevice:     cfg.ExitDevice,
	}, dedup, queue)

	gateway := humand.NewClient(cfg.HumandBase, cfg.HumandToken, cfg.DryRun, cfg.DeliveryTimeout)

	opts := []relay.WorkerOption{relay.WithDedupSweep(dedup)}
	if audit != nil {
		opts = append(opts, relay.WithAudit(audit))
	}
	if cfg.TelegramBotToken != "" {
		n, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("Warning: telegram alerts disabled: %v", err)
		} else {
			opts = append(opts, relay.WithNotifier(n))
		}
	}

	worker := relay.NewFlushWorker(queue, gateway, cfg.SendInterval, cfg.DeliveryTimeout, opts...)
	worker.Start(ctx)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpserver.NewRouter(cfg, ingestor, audit),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	// The worker flushes whatever is still queued before it returns.
	<-worker.Done()
	log.Println("relay stopped")
}

// openAuditStore returns nil when neither DB_URL nor AUDIT_SQLITE_PATH is set.
func openAuditStore(cfg config.Config) (store.AuditStore, error) {
	switch {
	case cfg.DBURL != "":
		// Connect to Postgres and make sure the audit table exists.
		pg, err := store.NewPostgresStore(cfg.DBURL)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(); err != nil {
			pg.Close()
			return nil, err
		}
		log.Println("audit trail: postgres")
		return pg, nil
	case cfg.AuditSQLitePath != "":
		sq, err := store.NewSQLiteStore(cfg.AuditSQLitePath)
		if err != nil {
			return nil, err
		}
		log.Printf("audit trail: sqlite %s", cfg.AuditSQLitePath)
		return sq, nil
	default:
		return nil, nil
	}
}
