//
// See the file COPYRIGHT for copyright information.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package tokencache

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"time"
)

// RedisStore is a Store backed by Redis, so that every process pointed at the
// same Redis shares the token.
type RedisStore struct {
	rdb redis.Cmdable
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// ConnectRedis opens a client and checks that the server answers.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("[Ping]: %w", err)
	}
	slog.Info("Connected to Redis", "addr", addr, "db", db)
	return rdb, nil
}

// GetWithTTL sends GET and TTL in a single MULTI/EXEC, so the value and its
// lifetime are read consistently.
func (s *RedisStore) GetWithTTL(ctx context.Context, key string) (string, time.Duration, error) {
	var get *redis.StringCmd
	var ttl *redis.DurationCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", 0, fmt.Errorf("[TxPipelined]: %w", err)
	}
	val, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("[GET]: %w", err)
	}
	remaining, err := ttl.Result()
	if err != nil {
		return "", 0, fmt.Errorf("[TTL]: %w", err)
	}
	// TTL answers -1 for a key without expiry and -2 for a missing key.
	if remaining <= 0 {
		return "", 0, nil
	}
	return val, remaining, nil
}

func (s *RedisStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("[SETEX]: %w", err)
	}
	return nil
}
