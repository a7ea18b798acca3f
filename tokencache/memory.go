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
	"github.com/ade-scheduler/adecal/lib/cache"
	"time"
)

// MemoryStore is a Store that lives in the current process only.
type MemoryStore struct {
	entries *cache.TTLMap[string]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: cache.NewTTLMap[string](nil)}
}

func (s *MemoryStore) GetWithTTL(_ context.Context, key string) (string, time.Duration, error) {
	val, ttl, _ := s.entries.Get(key)
	return val, ttl, nil
}

func (s *MemoryStore) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	s.entries.Set(key, value, ttl)
	return nil
}
