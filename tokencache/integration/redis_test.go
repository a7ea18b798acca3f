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

package integration_test

import (
	"context"
	"github.com/ade-scheduler/adecal/ade"
	"github.com/ade-scheduler/adecal/lib/testctr"
	"github.com/ade-scheduler/adecal/tokencache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync/atomic"
	"testing"
	"time"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := t.Context()
	_, cleanup, addr, err := testctr.RedisContainer(context.WithoutCancel(ctx))
	t.Cleanup(cleanup)
	require.NoError(t, err)

	rdb, err := tokencache.ConnectRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	rdb := newRedis(t)
	ctx := t.Context()
	store := tokencache.NewRedisStore(rdb)

	// missing key
	val, ttl, err := store.GetWithTTL(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, val)
	assert.LessOrEqual(t, ttl, time.Duration(0))

	// key without expiry is treated as missing
	require.NoError(t, rdb.Set(ctx, "forever", "x", 0).Err())
	val, _, err = store.GetWithTTL(ctx, "forever")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, store.SetEx(ctx, "k", "v", time.Minute))
	val, ttl, err = store.GetWithTTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestCacheSharedAcrossInstances(t *testing.T) {
	t.Parallel()
	rdb := newRedis(t)
	ctx := t.Context()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (ade.Token, error) {
		calls.Add(1)
		return ade.Token{AccessToken: "shared", ExpiresIn: 120}, nil
	}

	// two caches over the same Redis behave like two processes
	first := tokencache.New(tokencache.NewRedisStore(rdb), "")
	second := tokencache.New(tokencache.NewRedisStore(rdb), "")

	tok, err := first.GetOrFetch(ctx, fetch)
	require.NoError(t, err)
	assert.Equal(t, ade.Token{AccessToken: "shared", ExpiresIn: 120}, tok)

	tok, err = second.GetOrFetch(ctx, fetch)
	require.NoError(t, err)
	assert.Equal(t, "shared", tok.AccessToken)
	assert.LessOrEqual(t, tok.ExpiresIn, uint32(120))
	assert.Equal(t, int32(1), calls.Load())
}
