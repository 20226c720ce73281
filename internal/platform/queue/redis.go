package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gautamkshah/wise-academy/internal/platform/config"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis(log *logger.Logger) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := RDB.Ping(context.Background()).Result(); err != nil {
		log.Fatal("Could not connect to Redis", "addr", config.AppConfig.RedisAddr, "error", err)
	}
	log.Info("Connected to Redis", "addr", config.AppConfig.RedisAddr)
}

func CloseRedis(log *logger.Logger) {
	if RDB != nil {
		RDB.Close()
		log.Info("Redis connection closed")
	}
}

// ErrEmpty is returned by Dequeue when the wait elapsed without an item.
var ErrEmpty = errors.New("queue: empty")

// SyncQueue is a FIFO list of user ids awaiting an aggregate sync.
type SyncQueue struct {
	rdb  *redis.Client
	name string
}

func NewSyncQueue(rdb *redis.Client, name string) *SyncQueue {
	return &SyncQueue{rdb: rdb, name: name}
}

func (q *SyncQueue) Enqueue(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	values := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		values[i] = id
	}
	if err := q.rdb.LPush(ctx, q.name, values...).Err(); err != nil {
		return fmt.Errorf("SyncQueue.Enqueue: %w", err)
	}
	return nil
}

// Dequeue blocks up to wait for the oldest user id.
func (q *SyncQueue) Dequeue(ctx context.Context, wait time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, wait, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEmpty
		}
		return "", fmt.Errorf("SyncQueue.Dequeue: %w", err)
	}
	// BRPop replies with [queueName, value].
	if len(res) < 2 || res[1] == "" {
		return "", ErrEmpty
	}
	return res[1], nil
}

func (q *SyncQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Lock is a held SET NX lock. Release only deletes the key if it still carries our token.
type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

// TryLock returns (nil, nil) when another holder owns key.
func TryLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()
	ok, err := rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("queue.TryLock %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return &Lock{rdb: rdb, key: key, token: token}, nil
}

// Release reports whether the key was still ours.
func (l *Lock) Release(ctx context.Context) (bool, error) {
	deleted, err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Int64()
	if err != nil {
		return false, fmt.Errorf("Lock.Release %s: %w", l.key, err)
	}
	return deleted == 1, nil
}
