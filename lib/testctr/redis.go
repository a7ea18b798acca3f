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

package testctr

import (
	"context"
	"errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"log/slog"
)

const (
	RedisVersion     = "7.2-alpine"
	RedisDockerImage = "redis:" + RedisVersion
)

// RedisContainer creates and runs a Redis TestContainer, returning its "host:port" address.
//
// If there is an error on startup, this function will terminate the TestContainer before returning.
// After calling this function, the caller must be sure to defer cleanup, e.g. by `t.Cleanup(cleanup)`.
func RedisContainer(ctx context.Context) (
	ctr testcontainers.Container,
	cleanup func(),
	addr string,
	err error,
) {
	var errs []error
	ctr, err = testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        RedisDockerImage,
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		},
	)
	cleanup = func() {
		if ctr == nil {
			return
		}
		err := ctr.Terminate(ctx)
		if err != nil {
			slog.Error("Failed to terminate container", "error", err)
		}
	}
	errs = append(errs, err)
	if ctr != nil {
		addr, err = ctr.Endpoint(ctx, "")
		errs = append(errs, err)
	}

	err = errors.Join(errs...)
	if err != nil {
		cleanup()
	}
	return ctr, cleanup, addr, err
}
