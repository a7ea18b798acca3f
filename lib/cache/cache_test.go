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

package cache_test

import (
	"fmt"
	"github.com/ade-scheduler/adecal/lib/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTTLMap_Expiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tm := cache.NewTTLMap[string](clock.Now)

	_, _, ok := tm.Get("k")
	require.False(t, ok)

	tm.Set("k", "v", time.Minute)
	val, ttl, ok := tm.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", val)
	assert.Equal(t, time.Minute, ttl)

	clock.Advance(40 * time.Second)
	_, ttl, ok = tm.Get("k")
	require.True(t, ok)
	assert.Equal(t, 20*time.Second, ttl)

	clock.Advance(20 * time.Second)
	_, _, ok = tm.Get("k")
	assert.False(t, ok)
}

func TestTTLMap_SetSweepsExpired(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tm := cache.NewTTLMap[int](clock.Now)
	tm.Set("a", 1, time.Second)
	tm.Set("b", 2, time.Hour)
	require.Equal(t, 2, cache.Stored(tm))

	clock.Advance(2 * time.Second)
	tm.Set("c", 3, time.Hour)
	assert.Equal(t, 2, cache.Stored(tm))

	tm.Set("b", 0, 0)
	_, _, ok := tm.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Stored(tm))
}

func TestTTLMap_WorksWithNoRace(t *testing.T) {
	t.Parallel()
	tm := cache.NewTTLMap[int](nil)
	group, _ := errgroup.WithContext(t.Context())
	for i := range 1000 {
		group.Go(func() error {
			key := fmt.Sprint(i % 10)
			tm.Set(key, i, time.Hour)
			if _, _, ok := tm.Get(key); !ok {
				return fmt.Errorf("missing key %v", key)
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
	assert.Equal(t, 10, cache.Stored(tm))
}
