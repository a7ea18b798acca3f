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

package cmd

import (
	"context"
	"fmt"
	"github.com/ade-scheduler/adecal/ade"
	"github.com/ade-scheduler/adecal/calendar"
	"github.com/ade-scheduler/adecal/conf"
	"github.com/ade-scheduler/adecal/tokencache"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"net/http"
)

// deps are the long-lived values built once at startup and shared,
// read-only, by every request.
type deps struct {
	resolver *calendar.Resolver
	tokens   *tokencache.Source
	warmer   *tokencache.Warmer
	rdb      *redis.Client
}

func newDeps(ctx context.Context, cfg *conf.AppConfig) (*deps, error) {
	d := &deps{}

	client := ade.NewClient(cfg.ADE.Credentials(), &http.Client{Timeout: cfg.ADE.HTTPTimeout})

	var store tokencache.Store
	switch cfg.TokenCache.Type {
	case conf.TokenCacheTypeRedis:
		rdb, err := tokencache.ConnectRedis(ctx,
			cfg.TokenCache.Redis.Addr, cfg.TokenCache.Redis.Password, cfg.TokenCache.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("[ConnectRedis]: %w", err)
		}
		d.rdb = rdb
		store = tokencache.NewRedisStore(rdb)
	case conf.TokenCacheTypeMemory:
		store = tokencache.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown token cache type %v", cfg.TokenCache.Type)
	}
	d.tokens = tokencache.New(store, cfg.TokenCache.Key).
		WithFlightTimeout(cfg.ADE.HTTPTimeout).
		Bind(client.AcquireToken)

	selector, err := calendar.SelectorByName(string(cfg.Calendar.ProjectSelection))
	if err != nil {
		d.close(ctx)
		return nil, fmt.Errorf("[SelectorByName]: %w", err)
	}
	d.resolver = calendar.NewResolver(d.tokens, client, selector)

	if cfg.TokenCache.WarmSchedule != "" {
		d.warmer, err = tokencache.NewWarmer(cfg.TokenCache.WarmSchedule, d.tokens, cfg.TokenCache.WarmTimeout)
		if err != nil {
			d.close(ctx)
			return nil, fmt.Errorf("[NewWarmer]: %w", err)
		}
	}
	return d, nil
}

func (d *deps) close(ctx context.Context) {
	if d.warmer != nil {
		d.warmer.Stop(ctx)
	}
	if d.rdb != nil {
		if err := d.rdb.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}
}
