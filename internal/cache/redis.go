package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"fieldstock-api/internal/model"

	"github.com/redis/go-redis/v9"
)

// Buffer configuration
const (
	MaxBatchSize       = 50
	FlushTimeout       = 60 * time.Second
	StaleDataThreshold = 1 * time.Hour
	CleanupInterval    = 5 * time.Minute
)

// FlushFunc persists buffered items to the backing repository.
type FlushFunc func(ctx context.Context, items []model.Item) error

var deleteIfUnchangedScript = redis.NewScript(`
	if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
		redis.call("HDEL", KEYS[1], ARGV[1])
		redis.call("SREM", KEYS[2], ARGV[1])
		return 1
	else
		return 0
	end
`)

// RedisSyncBuffer is a write-behind buffer for item sync pushes from the
// mobile clients. Writes land in Redis immediately (the phone should never
// wait on the item store) and a background goroutine flushes batches to the
// repository. Concurrent pushes for the same item resolve last writer wins,
// matching the item store's own semantics.
type RedisSyncBuffer struct {
	client        *redis.Client
	flushFunc     FlushFunc
	flushTicker   *time.Ticker
	cleanupTicker *time.Ticker
	stopFlush     chan struct{}
	stopOnce      sync.Once
	keyPrefix     string
}

// RedisBufferConfig holds configuration for the sync buffer.
type RedisBufferConfig struct {
	Addr          string
	Password      string
	DB            int
	FlushInterval time.Duration
	KeyPrefix     string
}

// NewRedisSyncBuffer creates a Redis-backed sync buffer.
func NewRedisSyncBuffer(cfg RedisBufferConfig, flushFunc FlushFunc) (*RedisSyncBuffer, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "fieldstock:items"
	}

	b := &RedisSyncBuffer{
		client:        client,
		flushFunc:     flushFunc,
		flushTicker:   time.NewTicker(cfg.FlushInterval),
		cleanupTicker: time.NewTicker(CleanupInterval),
		stopFlush:     make(chan struct{}),
		keyPrefix:     keyPrefix,
	}

	go b.backgroundFlush()
	go b.backgroundCleanup()

	log.Printf("[RedisSyncBuffer] Started - DB:%d, prefix:%s, flush:%v, batch:%d",
		cfg.DB, keyPrefix, cfg.FlushInterval, MaxBatchSize)
	return b, nil
}

func (b *RedisSyncBuffer) bufferKey() string {
	return b.keyPrefix + ":buffer"
}

func (b *RedisSyncBuffer) pendingKey() string {
	return b.keyPrefix + ":pending"
}

// Add buffers an item upsert in Redis.
func (b *RedisSyncBuffer) Add(ctx context.Context, item model.Item) error {
	item.UpdatedAt = time.Now()

	jsonData, err := json.Marshal(item)
	if err != nil {
		return err
	}

	pipe := b.client.Pipeline()
	pipe.HSet(ctx, b.bufferKey(), item.ID, jsonData)
	pipe.SAdd(ctx, b.pendingKey(), item.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// Get retrieves a buffered item from Redis, or nil when not buffered.
func (b *RedisSyncBuffer) Get(ctx context.Context, itemID string) (*model.Item, error) {
	data, err := b.client.HGet(ctx, b.bufferKey(), itemID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var item model.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}

	return &item, nil
}

// Count returns the number of pending items.
func (b *RedisSyncBuffer) Count(ctx context.Context) (int64, error) {
	return b.client.SCard(ctx, b.pendingKey()).Result()
}

// FlushBatch writes up to MaxBatchSize items to the repository.
func (b *RedisSyncBuffer) FlushBatch(ctx context.Context) (int, error) {
	itemIDs, err := b.client.SRandMemberN(ctx, b.pendingKey(), MaxBatchSize).Result()
	if err != nil {
		return 0, err
	}

	if len(itemIDs) == 0 {
		return 0, nil
	}

	totalPending, _ := b.Count(ctx)
	log.Printf("[RedisSyncBuffer] Flushing %d/%d items", len(itemIDs), totalPending)

	items := make([]model.Item, 0, len(itemIDs))
	originalData := make(map[string]string)

	for _, id := range itemIDs {
		data, err := b.client.HGet(ctx, b.bufferKey(), id).Bytes()
		if err == redis.Nil {
			b.client.SRem(ctx, b.pendingKey(), id)
			continue
		}
		if err != nil {
			log.Printf("[RedisSyncBuffer] Error getting %s: %v", id, err)
			continue
		}

		originalData[id] = string(data)

		var item model.Item
		if err := json.Unmarshal(data, &item); err != nil {
			log.Printf("[RedisSyncBuffer] Error unmarshaling %s: %v", id, err)
			b.client.HDel(ctx, b.bufferKey(), id)
			b.client.SRem(ctx, b.pendingKey(), id)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return 0, nil
	}

	if err := b.flushFunc(ctx, items); err != nil {
		log.Printf("[RedisSyncBuffer] Flush error: %v", err)
		return 0, err
	}

	// Only clear entries the flush actually wrote; anything updated while
	// we were flushing stays pending.
	pipe := b.client.Pipeline()
	for id, rawJSON := range originalData {
		deleteIfUnchangedScript.Run(ctx, pipe, []string{b.bufferKey(), b.pendingKey()}, id, rawJSON)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[RedisSyncBuffer] Error clearing Redis: %v", err)
	}

	log.Printf("[RedisSyncBuffer] Successfully flushed %d items", len(items))
	return len(items), nil
}

// Flush writes one batch of buffered items to the repository.
func (b *RedisSyncBuffer) Flush(ctx context.Context) error {
	_, err := b.FlushBatch(ctx)
	return err
}

// CleanupStale removes buffered entries older than StaleDataThreshold.
func (b *RedisSyncBuffer) CleanupStale(ctx context.Context) (int, error) {
	itemIDs, err := b.client.SMembers(ctx, b.pendingKey()).Result()
	if err != nil {
		return 0, err
	}

	if len(itemIDs) == 0 {
		return 0, nil
	}

	staleThreshold := time.Now().Add(-StaleDataThreshold)
	staleCount := 0
	pipe := b.client.Pipeline()

	for _, id := range itemIDs {
		data, err := b.client.HGet(ctx, b.bufferKey(), id).Bytes()
		if err == redis.Nil {
			pipe.SRem(ctx, b.pendingKey(), id)
			continue
		}
		if err != nil {
			continue
		}

		var item model.Item
		if err := json.Unmarshal(data, &item); err != nil {
			pipe.HDel(ctx, b.bufferKey(), id)
			pipe.SRem(ctx, b.pendingKey(), id)
			staleCount++
			continue
		}

		if item.UpdatedAt.Before(staleThreshold) {
			pipe.HDel(ctx, b.bufferKey(), id)
			pipe.SRem(ctx, b.pendingKey(), id)
			staleCount++
		}
	}

	if staleCount > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[RedisSyncBuffer] Cleanup exec error: %v", err)
			return 0, err
		}
		log.Printf("[RedisSyncBuffer] Cleaned up %d stale items", staleCount)
	}

	return staleCount, nil
}

func (b *RedisSyncBuffer) backgroundFlush() {
	for {
		select {
		case <-b.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if _, err := b.FlushBatch(ctx); err != nil {
				log.Printf("[RedisSyncBuffer] Background flush error: %v", err)
			}
			cancel()
		case <-b.stopFlush:
			log.Printf("[RedisSyncBuffer] Shutdown: flushing remaining items...")
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			for {
				flushed, err := b.FlushBatch(ctx)
				if err != nil {
					log.Printf("[RedisSyncBuffer] Shutdown flush error: %v", err)
					break
				}
				if flushed == 0 {
					break
				}
			}
			cancel()
			log.Printf("[RedisSyncBuffer] Shutdown flush complete")
			return
		}
	}
}

func (b *RedisSyncBuffer) backgroundCleanup() {
	for {
		select {
		case <-b.cleanupTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			b.CleanupStale(ctx)
			cancel()
		case <-b.stopFlush:
			return
		}
	}
}

// Close stops the buffer and performs a final flush.
func (b *RedisSyncBuffer) Close() error {
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		b.cleanupTicker.Stop()
		close(b.stopFlush)
	})
	return b.client.Close()
}
