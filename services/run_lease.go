package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrRunInProgress = errors.New("an automation run is already in progress for this slip")

// releaseScript deletes the lease only if this run still owns it, so a
// run that outlived its TTL cannot release a newer run's lease.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RunLease grants at most one automation run per slip at a time. With
// Redis configured the lease expires on its own if the process dies
// mid-run; without Redis a process-local table is used instead.
type RunLease struct {
	rdb *redis.Client
	ttl time.Duration

	mu    sync.Mutex
	local map[string]struct{}
}

func NewRunLease(rdb *redis.Client, ttl time.Duration) *RunLease {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}

	return &RunLease{rdb: rdb, ttl: ttl, local: make(map[string]struct{})}
}

func leaseKey(slipID string) string {
	return "slipgen:run-lease:" + slipID
}

// Acquire claims the slip for one run and returns the release function
// the caller must invoke on every exit path. ErrRunInProgress means
// another run currently holds the slip.
func (l *RunLease) Acquire(ctx context.Context, slipID string) (func(), error) {
	if l.rdb == nil {
		return l.acquireLocal(slipID)
	}

	key := leaseKey(slipID)
	token := uuid.New().String()

	acquired, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lease acquire failed: %w", err)
	}
	if !acquired {
		return nil, ErrRunInProgress
	}

	release := func() {
		// The run context may already be expired; release on its own
		// deadline.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil && err != redis.Nil {
			log.Printf("Failed to release run lease for slip %s: %v", slipID, err)
		}
	}

	return release, nil
}

func (l *RunLease) acquireLocal(slipID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.local[slipID]; held {
		return nil, ErrRunInProgress
	}
	l.local[slipID] = struct{}{}

	release := func() {
		l.mu.Lock()
		delete(l.local, slipID)
		l.mu.Unlock()
	}

	return release, nil
}
