package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// TallyKey names the per-owner per-day check-in counter maintained by the
// worker. day is a YYYY-MM-DD string.
func TallyKey(ownerID, day string) string {
	return "rollcall:tally:" + ownerID + ":" + day
}

// DailyTally returns the number of check-ins counted for the owner on day;
// zero when no counter exists yet.
func (r *Redis) DailyTally(ctx context.Context, ownerID, day string) (int64, error) {
	val, err := r.Client.Get(ctx, TallyKey(ownerID, day)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}
