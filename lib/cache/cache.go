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

package cache

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// TTLMap is an in-process key/value store where every entry carries its own expiry.
//
// Reads are lock-free: they load an immutable snapshot of the map. Writes take the write lock,
// copy the snapshot, drop expired entries and publish the copy. It is intended for a handful
// of long-lived keys, not for high write volumes.
type TTLMap[V any] struct {
	dataPtr atomic.Pointer[map[string]entry[V]]
	writeMu sync.Mutex
	now     func() time.Time
}

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// NewTTLMap creates an empty TTLMap. The now function is optional and defaults to time.Now.
func NewTTLMap[V any](now func() time.Time) *TTLMap[V] {
	if now == nil {
		now = time.Now
	}
	tm := &TTLMap[V]{now: now}
	tm.dataPtr.Store(&map[string]entry[V]{})
	return tm
}

// Get returns the value stored under key along with how long it remains valid.
// The final return value is false if there is no live entry for the key.
func (tm *TTLMap[V]) Get(key string) (V, time.Duration, bool) {
	e, ok := (*tm.dataPtr.Load())[key]
	if !ok {
		var zero V
		return zero, 0, false
	}
	remaining := e.expiresAt.Sub(tm.now())
	if remaining <= 0 {
		var zero V
		return zero, 0, false
	}
	return e.data, remaining, true
}

// Set stores val under key for ttl. A non-positive ttl removes the key.
func (tm *TTLMap[V]) Set(key string, val V, ttl time.Duration) {
	tm.writeMu.Lock()
	defer tm.writeMu.Unlock()
	now := tm.now()
	next := maps.Clone(*tm.dataPtr.Load())
	maps.DeleteFunc(next, func(_ string, e entry[V]) bool {
		return !now.Before(e.expiresAt)
	})
	if ttl > 0 {
		next[key] = entry[V]{data: val, expiresAt: now.Add(ttl)}
	} else {
		delete(next, key)
	}
	tm.dataPtr.Store(&next)
}
