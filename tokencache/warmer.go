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
	"github.com/robfig/cron/v3"
	"log/slog"
	"time"
)

// Warmer refreshes the cached token on a schedule, so that requests rarely
// pay for the token exchange themselves.
type Warmer struct {
	cron    *cron.Cron
	source  *Source
	timeout time.Duration
}

// NewWarmer polls source on schedule, which may be anything robfig/cron
// understands, e.g. "@every 10m" or "*/15 * * * *".
// Each run is bounded by timeout.
func NewWarmer(schedule string, source *Source, timeout time.Duration) (*Warmer, error) {
	w := &Warmer{
		cron:    cron.New(),
		source:  source,
		timeout: timeout,
	}
	if _, err := w.cron.AddFunc(schedule, w.Warm); err != nil {
		return nil, fmt.Errorf("[AddFunc]: %w", err)
	}
	return w, nil
}

// Start runs the schedule in the background.
func (w *Warmer) Start() {
	w.cron.Start()
}

// Stop ends the schedule and waits for a running job to finish, or for ctx
// to be done, whichever comes first.
func (w *Warmer) Stop(ctx context.Context) {
	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Warm makes sure a live token is cached.
func (w *Warmer) Warm() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	tok, err := w.source.AcquireToken(ctx)
	if err != nil {
		slog.Error("Failed to warm token cache", "error", err)
		return
	}
	slog.Debug("Token cache warm", "expiresIn", tok.ExpiresIn)
}
