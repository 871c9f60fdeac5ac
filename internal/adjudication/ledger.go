package adjudication

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/rueidis"
)

// Ledger counts unresolved warnings per player.
type Ledger interface {
	// Increment adds one warning and returns the new count.
	Increment(ctx context.Context, playerID string) (int64, error)
	// Reset clears the player's warnings.
	Reset(ctx context.Context, playerID string) error
	// Count returns the player's current warnings.
	Count(ctx context.Context, playerID string) (int64, error)
}

// MemoryLedger keeps warnings in process memory. Counts are lost on restart.
type MemoryLedger struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{counts: make(map[string]int64)}
}

func (l *MemoryLedger) Increment(_ context.Context, playerID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[playerID]++

	return l.counts[playerID], nil
}

func (l *MemoryLedger) Reset(_ context.Context, playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.counts, playerID)

	return nil
}

func (l *MemoryLedger) Count(_ context.Context, playerID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.counts[playerID], nil
}

// ledgerKeyPrefix namespaces ledger keys in Redis.
const ledgerKeyPrefix = "warnings:"

// RedisLedger keeps warnings in Redis so restarts do not forgive them.
type RedisLedger struct {
	client rueidis.Client
}

// NewRedisLedger creates a ledger backed by client.
func NewRedisLedger(client rueidis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Increment(ctx context.Context, playerID string) (int64, error) {
	count, err := l.client.Do(ctx, l.client.B().Incr().Key(ledgerKeyPrefix+playerID).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment warnings: %w", err)
	}

	return count, nil
}

func (l *RedisLedger) Reset(ctx context.Context, playerID string) error {
	if err := l.client.Do(ctx, l.client.B().Del().Key(ledgerKeyPrefix+playerID).Build()).Error(); err != nil {
		return fmt.Errorf("failed to reset warnings: %w", err)
	}

	return nil
}

func (l *RedisLedger) Count(ctx context.Context, playerID string) (int64, error) {
	raw, err := l.client.Do(ctx, l.client.B().Get().Key(ledgerKeyPrefix+playerID).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read warnings: %w", err)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid warning count %q: %w", raw, err)
	}

	return count, nil
}
