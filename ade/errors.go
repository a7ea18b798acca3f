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

package ade

import (
	"fmt"
)

// TransportError means upstream could not be reached, or answered with a
// non-2xx status. Status is zero when no response was received.
type TransportError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ade %v: HTTP %d: %v", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("ade %v: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamAuthError means the token endpoint rejected the credentials.
type UpstreamAuthError struct {
	Status int
	Body   string
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("ade token exchange rejected: HTTP %d: %v", e.Status, e.Body)
}

// TokenDecodeError means the token endpoint answered with a body that is
// not a usable token envelope.
type TokenDecodeError struct {
	Err error
}

func (e *TokenDecodeError) Error() string {
	return fmt.Sprintf("ade token response: %v", e.Err)
}

func (e *TokenDecodeError) Unwrap() error {
	return e.Err
}
