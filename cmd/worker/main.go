package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rollcall/internal/attendance"
	"rollcall/internal/config"
	"rollcall/internal/queue"
	"rollcall/internal/store"
)

const tallyTTL = 60 * 24 * time.Hour

// Worker consumes check-in messages and keeps per-owner daily tallies in
// Redis for cheap dashboard reads.
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

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:checkins")
	}

	repo := attendance.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "checkin" {
			continue
		}

		var payload struct {
			EventID string `json:"event_id"`
		}
		if err := json.Unmarshal(msg.Body, &payload); err != nil || payload.EventID == "" {
			log.Printf("malformed checkin message: %v", err)
			continue
		}

		evt, err := repo.Get(ctx, payload.EventID)
		if err != nil {
			log.Printf("fetch event %s failed: %v", payload.EventID, err)
			continue
		}
		if evt == nil {
			log.Printf("event %s not found, skipping", payload.EventID)
			continue
		}

		key := store.TallyKey(evt.OwnerID, evt.OccurredAt.Format("2006-01-02"))
		if err := redisClient.Client.Incr(ctx, key).Err(); err != nil {
			log.Printf("tally incr failed for %s: %v", key, err)
			continue
		}
		_ = redisClient.Client.Expire(ctx, key, tallyTTL).Err()
		log.Printf("tallied check-in for owner %s (%s)", evt.OwnerID, evt.MemberName)
	}

	log.Println("worker stopped")
}
