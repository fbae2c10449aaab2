package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukerupert/grocer/internal/model"
)

const defaultRedisTimeout = 2 * time.Second

// RedisCartStore keeps cart entries in a hash (id -> JSON entry) and their
// insertion order in a sorted set scored by a monotonic counter.
type RedisCartStore struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisCartStore wraps client. All keys are namespaced under prefix.
func NewRedisCartStore(client redis.UniversalClient, prefix string) *RedisCartStore {
	return &RedisCartStore{client: client, prefix: prefix, timeout: defaultRedisTimeout}
}

// NewRedisClient builds a client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *RedisCartStore) key(name string) string {
	return s.prefix + ":cart:" + name
}

func (s *RedisCartStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Ping checks connectivity.
func (s *RedisCartStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *RedisCartStore) List() ([]model.GroceryItem, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	ids, err := s.client.ZRange(ctx, s.key("order"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list cart order: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	vals, err := s.client.HMGet(ctx, s.key("entries"), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("list cart entries: %w", err)
	}

	items := make([]model.GroceryItem, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Order entry without a hash entry; skip it.
			continue
		}
		var item model.GroceryItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("decode cart entry %s: %w", ids[i], err)
		}
		items = append(items, item)
	}
	return items, nil
}

// insertScript adds an entry and its order slot in one step. Every read that
// can fail on a wrong key type runs before the first write, and INCR is the
// only write that can still fail, so an error leaves no partial entry.
//
// KEYS: entries, order, seq. ARGV: field, encoded entry.
var insertScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call('ZSCORE', KEYS[2], ARGV[1])
local seq = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[2], seq, ARGV[1])
return 1
`)

// updateScript replaces an existing entry and never creates one.
//
// KEYS: entries. ARGV: field, encoded entry.
var updateScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

func (s *RedisCartStore) get(ctx context.Context, id uint64) (*model.GroceryItem, error) {
	raw, err := s.client.HGet(ctx, s.key("entries"), strconv.FormatUint(id, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart entry: %w", err)
	}
	var item model.GroceryItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("decode cart entry: %w", err)
	}
	return &item, nil
}

func (s *RedisCartStore) Insert(item model.GroceryItem) error {
	ctx, cancel := s.ctx()
	defer cancel()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode cart entry: %w", err)
	}
	field := strconv.FormatUint(item.ID, 10)

	keys := []string{s.key("entries"), s.key("order"), s.key("seq")}
	added, err := insertScript.Run(ctx, s.client, keys, field, data).Int()
	if err != nil {
		return fmt.Errorf("insert cart entry: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("insert cart entry: id %d already stored", item.ID)
	}
	return nil
}

func (s *RedisCartStore) Delete(id uint64) error {
	ctx, cancel := s.ctx()
	defer cancel()

	field := strconv.FormatUint(id, 10)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.key("entries"), field)
		pipe.ZRem(ctx, s.key("order"), field)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete cart entry: %w", err)
	}
	return nil
}

func (s *RedisCartStore) SetCompleted(id uint64, completed bool) error {
	ctx, cancel := s.ctx()
	defer cancel()

	item, err := s.get(ctx, id)
	if err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	if item == nil {
		return fmt.Errorf("set completed: id %d not stored", id)
	}
	item.Completed = completed

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode cart entry: %w", err)
	}
	updated, err := updateScript.Run(ctx, s.client, []string{s.key("entries")}, strconv.FormatUint(id, 10), data).Int()
	if err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("set completed: id %d not stored", id)
	}
	return nil
}

// clear removes every key owned by this store.
func (s *RedisCartStore) clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key("entries"), s.key("order"), s.key("seq")).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
