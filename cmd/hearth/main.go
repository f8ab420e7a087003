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

	"github.com/hearth-app/hearth/internal/backup"
	"github.com/hearth-app/hearth/internal/database"
	"github.com/hearth-app/hearth/internal/logging"
	"github.com/hearth-app/hearth/internal/server"
)

func main() {
	port := os.Getenv("HEARTH_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HEARTH_DB_PATH")
	if dbPath == "" {
		dbPath = "hearth.db"
	}

	logger := logging.Setup(os.Getenv("HEARTH_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("HEARTH_S3_ENDPOINT"),
			Bucket:    os.Getenv("HEARTH_S3_BUCKET"),
			Region:    os.Getenv("HEARTH_S3_REGION"),
			AccessKey: os.Getenv("HEARTH_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("HEARTH_S3_SECRET_KEY"),
			Prefix:    os.Getenv("HEARTH_S3_PREFIX"),
		},
		DBPath:     dbPath,
		Passphrase: os.Getenv("HEARTH_BACKUP_PASSPHRASE"),
	}
	pushCfg := server.PushConfig{
		VAPIDPublicKey:  os.Getenv("HEARTH_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("HEARTH_VAPID_PRIVATE_KEY"),
	}

	srv := server.New(db, backupCfg, pushCfg, logger)
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	} else {
		logger.Info("push notifications disabled, VAPID keys not set")
	}

	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(ctx)
		defer mgr.Stop()
	} else {
		logger.Info("backups disabled, S3 not configured")
	}

	// Hourly cleanup of expired sessions and stale rate-limit entries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Hearth running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
