package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis. These locks are the
// dispatch fast path only: they thin out contention between concurrent
// matches, while the database CAS remains the actual correctness guard.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireDriverLock attempts to acquire a lock for the given driver.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:driver:%s", driverID)
	return s.client.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseDriverLock releases the lock for the given driver.
func (s *LockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	key := fmt.Sprintf("lock:driver:%s", driverID)
	return s.client.Del(ctx, key).Err()
}

// AcquireRideLock attempts to acquire a lock for ride dispatch, so two
// dispatch attempts on the same ride do not walk the candidate list at
// the same time.
func (s *LockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:ride:%s", rideID)
	return s.client.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseRideLock releases the lock for a ride.
func (s *LockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	key := fmt.Sprintf("lock:ride:%s", rideID)
	return s.client.Del(ctx, key).Err()
}
