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

// Package tokencache shares one upstream access token across requests and
// processes, so that the token exchange happens once per token lifetime rather
// than once per request.
package tokencache

import (
	"context"
	"time"
)

// DefaultKey is the key under which the token is stored.
const DefaultKey = "ade-token"

// Store is a key/value store with per-key expiry.
//
// A missing or expired key is not an error: GetWithTTL reports it with an
// empty value and a non-positive ttl.
type Store interface {
	// GetWithTTL reads the value and its remaining lifetime in one atomic step.
	GetWithTTL(ctx context.Context, key string) (value string, ttl time.Duration, err error)
	// SetEx stores value under key, to expire after ttl.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
}
