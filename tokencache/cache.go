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
	"fmt"
	"github.com/ade-scheduler/adecal/ade"
	"github.com/ade-scheduler/adecal/lib/conv"
	"golang.org/x/sync/singleflight"
	"log/slog"
	"time"
)

// DefaultFlightTimeout bounds a shared fetch when no other timeout was set.
const DefaultFlightTimeout = 30 * time.Second

// Fetcher obtains a fresh token from upstream.
type Fetcher func(ctx context.Context) (ade.Token, error)

// Cache reads the shared token from a Store and falls back to a Fetcher when
// there is none. The Store is best effort: when it fails, the token is fetched
// (or returned) anyway.
type Cache struct {
	store         Store
	key           string
	flightTimeout time.Duration
	group         singleflight.Group
}

// New creates a Cache over store. An empty key means DefaultKey.
func New(store Store, key string) *Cache {
	if key == "" {
		key = DefaultKey
	}
	return &Cache{store: store, key: key, flightTimeout: DefaultFlightTimeout}
}

// WithFlightTimeout bounds each shared fetch by d, typically the upstream
// HTTP timeout. A non-positive d keeps the current timeout.
func (c *Cache) WithFlightTimeout(d time.Duration) *Cache {
	if d > 0 {
		c.flightTimeout = d
	}
	return c
}

// GetOrFetch returns the cached token if there is a live one, and otherwise
// calls fetch and caches its result for the token's lifetime.
//
// A cached token comes back with ExpiresIn set to its remaining lifetime.
// Concurrent misses within this process share a single call to fetch. Across
// processes, two callers may both fetch, and the last write wins.
//
// The shared fetch does not belong to any one caller: it keeps the values of
// the ctx that started it but not its cancellation, and is bounded by the
// flight timeout instead. A caller whose ctx is done stops waiting without
// affecting the others.
func (c *Cache) GetOrFetch(ctx context.Context, fetch Fetcher) (ade.Token, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(c.key, func() (any, error) {
		ctx, cancel := context.WithTimeout(flightCtx, c.flightTimeout)
		defer cancel()
		return c.load(ctx, fetch)
	})
	select {
	case <-ctx.Done():
		return ade.Token{}, fmt.Errorf("[GetOrFetch]: %w", context.Cause(ctx))
	case res := <-ch:
		if res.Err != nil {
			return ade.Token{}, res.Err
		}
		return res.Val.(ade.Token), nil
	}
}

func (c *Cache) load(ctx context.Context, fetch Fetcher) (ade.Token, error) {
	val, ttl, err := c.store.GetWithTTL(ctx, c.key)
	if err != nil {
		slog.WarnContext(ctx, "Token cache read failed, fetching a new token", "key", c.key, "error", err)
	} else if tok := (ade.Token{AccessToken: val, ExpiresIn: conv.DurationToSeconds(ttl)}); tok.Usable() {
		return tok, nil
	}

	tok, err := fetch(ctx)
	if err != nil {
		return ade.Token{}, fmt.Errorf("[fetch]: %w", err)
	}
	if !tok.Usable() || ctx.Err() != nil {
		return tok, nil
	}
	if err = c.store.SetEx(ctx, c.key, tok.AccessToken, conv.Seconds(tok.ExpiresIn)); err != nil {
		slog.WarnContext(ctx, "Token cache write failed", "key", c.key, "error", err)
	}
	return tok, nil
}

// Bind ties the cache to a fetcher, giving a token source with no arguments
// beyond the context.
func (c *Cache) Bind(fetch Fetcher) *Source {
	return &Source{cache: c, fetch: fetch}
}

// Source hands out tokens from a Cache, fetching through a fixed Fetcher.
type Source struct {
	cache *Cache
	fetch Fetcher
}

func (s *Source) AcquireToken(ctx context.Context) (ade.Token, error) {
	return s.cache.GetOrFetch(ctx, s.fetch)
}
