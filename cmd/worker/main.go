package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"schoolportal/internal/attendance"
	"schoolportal/internal/config"
	"schoolportal/internal/queue"
	"schoolportal/internal/store"
)

// Worker consumes attendance events and maintains the per-entity summary
// counters plus the cached present lists that the API reads through.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		log.Fatal("memory queue has no cross-process consumer; use the redis backend")
	}
	q = queue.NewRedisQueue(redisClient.Client, "portal:attendance")

	repo := attendance.NewRepository(db.Client)
	cache := store.NewPresentCache(redisClient, cfg.DateCacheTTL)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for attendance events...")
	for msg := range messages {
		var evt attendance.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("drop malformed %s event: %v", msg.Type, err)
			continue
		}

		switch msg.Type {
		case attendance.EventMark, attendance.EventUnmark:
			cache.Invalidate(ctx, evt.Kind, evt.Date)
			if err := repo.RecomputeSummary(ctx, evt.Kind, evt.EntityID); err != nil {
				log.Printf("summary recompute failed for %s %s: %v", evt.Kind, evt.EntityID, err)
				continue
			}
			log.Printf("summary refreshed: %s %s (%s on %s)", evt.Kind, evt.EntityID, evt.Status, evt.Date)

		case attendance.EventRollover:
			// Refresh every entity that had a mark on the archived day so
			// the counters include it.
			marks, err := repo.EntitiesOn(ctx, evt.Date)
			if err != nil {
				log.Printf("rollover fetch failed for %s: %v", evt.Date, err)
				continue
			}
			for _, m := range marks {
				if err := repo.RecomputeSummary(ctx, m.Kind, m.EntityID); err != nil {
					log.Printf("summary recompute failed for %s %s: %v", m.Kind, m.EntityID, err)
				}
			}
			log.Printf("rollover processed: %s (%d entities)", evt.Date, len(marks))

		default:
			log.Printf("ignoring event type %s", msg.Type)
		}
	}

	log.Println("worker stopped")
}
