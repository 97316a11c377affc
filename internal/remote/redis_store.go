package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "fmp:"
	watchPrefix   = "fmp.watch:"
	maxTxAttempts = 16
)

// RedisStore implements Store on a Redis instance. Values are JSON
// documents keyed by path; change notifications travel over pub/sub
// channels, one per watched path prefix.
type RedisStore struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisStore wraps an existing Redis client. A nil logger disables
// logging.
func NewRedisStore(rdb *redis.Client, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{rdb: rdb, log: log}
}

func (s *RedisStore) key(path string) string     { return keyPrefix + path }
func (s *RedisStore) channel(path string) string { return watchPrefix + path }

func (s *RedisStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	val, err := s.rdb.Get(ctx, s.key(path)).Result()
	if err == nil {
		return json.RawMessage(val), nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}

	// No leaf at the path itself; assemble the subtree.
	keys, err := s.childKeys(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s children: %w", path, err)
	}
	leaves := make(map[string]json.RawMessage, len(keys))
	base := s.key(path) + "/"
	for i, k := range keys {
		str, ok := vals[i].(string)
		if !ok {
			continue // expired between SCAN and MGET
		}
		leaves[strings.TrimPrefix(k, base)] = json.RawMessage(str)
	}
	return assemble(leaves), nil
}

func (s *RedisStore) childKeys(ctx context.Context, path string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.key(path)+"/*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return keys, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	if value == nil {
		return s.Delete(ctx, path)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := s.rdb.Set(ctx, s.key(path), string(data), 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	s.publish(ctx, path)
	return nil
}

func (s *RedisStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	k := s.key(path)
	txf := func(tx *redis.Tx) error {
		current := map[string]any{}
		val, err := tx.Get(ctx, k).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if err := json.Unmarshal([]byte(val), &current); err != nil {
				return fmt.Errorf("existing value is not an object: %w", err)
			}
		}
		for key, v := range fields {
			current[key] = v
		}
		data, err := json.Marshal(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, string(data), 0)
			return nil
		})
		return err
	}
	for i := 0; i < maxTxAttempts; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if err == nil {
			s.publish(ctx, path)
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("merge %s: %w", path, err)
	}
	return fmt.Errorf("merge %s: %w", path, ErrTxContention)
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	keys, err := s.childKeys(ctx, path)
	if err != nil {
		return err
	}
	keys = append(keys, s.key(path))
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	s.publish(ctx, path)
	return nil
}

func (s *RedisStore) Push(ctx context.Context, path string, value any) (string, error) {
	key := uuid.NewString()
	if err := s.Set(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *RedisStore) Transact(ctx context.Context, path string, update func(current int64) int64) (int64, error) {
	k := s.key(path)
	var result int64
	txf := func(tx *redis.Tx) error {
		var current int64
		val, err := tx.Get(ctx, k).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			current, err = strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return fmt.Errorf("cell is not an integer: %w", err)
			}
		}
		next := update(current)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, strconv.FormatInt(next, 10), 0)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}
	for i := 0; i < maxTxAttempts; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if err == nil {
			s.publish(ctx, path)
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // lost the race, take another turn
		}
		return 0, fmt.Errorf("transact %s: %w", path, err)
	}
	return 0, fmt.Errorf("transact %s: %w", path, ErrTxContention)
}

// publish fans a change at path out to the channels of the path and every
// ancestor, so collection watchers see child writes.
func (s *RedisStore) publish(ctx context.Context, path string) {
	for _, p := range ancestors(path) {
		if err := s.rdb.Publish(ctx, s.channel(p), path).Err(); err != nil {
			s.log.Warn("change publish failed", zap.String("path", p), zap.Error(err))
		}
	}
}

func (s *RedisStore) Subscribe(path string, fn func(snapshot json.RawMessage)) (Unsubscribe, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ps := s.rdb.Subscribe(ctx, s.channel(path))
	if _, err := ps.Receive(ctx); err != nil {
		cancel()
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}
	ch := ps.Channel()

	go func() {
		if snap, err := s.Get(ctx, path); err == nil {
			fn(snap)
		} else if !errors.Is(err, context.Canceled) {
			s.log.Warn("initial snapshot failed", zap.String("path", path), zap.Error(err))
		}
		for range ch {
			snap, err := s.Get(ctx, path)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.log.Warn("snapshot read failed", zap.String("path", path), zap.Error(err))
				}
				continue
			}
			fn(snap)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
		})
	}, nil
}
