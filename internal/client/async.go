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

// File: internal/client/async.go
// Package: client

package client

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Result is the completion of one asynchronous round trip.
type Result struct {
	ID       uuid.UUID     `json:"id" yaml:"id"`
	Endpoint Endpoint      `json:"endpoint" yaml:"endpoint"`
	Command  string        `json:"command" yaml:"command"`
	Response Response      `json:"response" yaml:"response"`
	Err      error         `json:"-" yaml:"-"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Go runs Execute on its own goroutine. The returned channel receives
// exactly one Result and is then closed, so the caller never blocks on
// network I/O. Concurrent calls are not ordered with respect to each other.
func (c *Client) Go(ctx context.Context, ep Endpoint, command string) <-chan Result {
	done := make(chan Result, 1)
	id := uuid.New()
	go func() {
		defer close(done)
		start := time.Now()
		resp, err := c.Execute(ctx, ep, command)
		done <- Result{
			ID:       id,
			Endpoint: ep,
			Command:  command,
			Response: resp,
			Err:      err,
			Elapsed:  time.Since(start),
		}
	}()
	return done
}
