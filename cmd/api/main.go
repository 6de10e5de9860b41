package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/account"
	"schoolportal/internal/attendance"
	"schoolportal/internal/config"
	"schoolportal/internal/contributors"
	"schoolportal/internal/homework"
	"schoolportal/internal/httpapi"
	"schoolportal/internal/progress"
	"schoolportal/internal/queue"
	"schoolportal/internal/roster"
	"schoolportal/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "portal:attendance")
	}

	rosterSvc := roster.NewService(roster.NewRepository(db.Client))

	accountSvc := account.NewService(account.NewRepository(db.Client), account.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err := accountSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("warning: admin bootstrap failed: %v", err)
	}

	book := attendance.NewBook(time.Now().Format(attendance.DateLayout))
	cache := store.NewPresentCache(redisClient, cfg.DateCacheTTL)
	attendanceSvc := attendance.NewService(book, attendance.NewRepository(db.Client), rosterSvc, q, cache, cfg.HistoryRetentionDays)
	if err := attendanceSvc.Restore(ctx); err != nil {
		log.Printf("warning: attendance restore failed: %v", err)
	}
	attendanceSvc.StartRollover(ctx, cfg.RolloverInterval)

	homeworkSvc := homework.NewService(homework.NewRepository(db.Client))
	contributorsSvc := contributors.NewService(contributors.NewRepository(db.Client))
	progressSvc := progress.NewService(progress.NewRepository(db.Client))

	h := httpapi.New(cfg, accountSvc, rosterSvc, attendanceSvc, homeworkSvc, contributorsSvc, progressSvc, db, redisClient)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}
