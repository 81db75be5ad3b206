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

// File: internal/client/client.go
// Package: client
//
// Description:
// This file implements the command round trip against the remote device:
// connect, write the raw command, read the reply into a bounded buffer and
// close. There is no framing, no retry and no connection reuse; every call
// owns its socket and its buffer.
//
// Framing:
// - ReadOnce performs a single Read and treats whatever arrived as the
//   complete reply. This is the default.
// - ReadUntilClose keeps reading until the peer closes the connection and
//   keeps at most BufferSize bytes.
//
// In both modes a reply larger than the buffer is truncated, never an
// error, and a peer that closes without writing yields an empty Response.

// Package client sends plaintext commands to a remote device over TCP.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
)

// DefaultBufferSize is the reply capacity the device firmware is built around.
const DefaultBufferSize = 1024

// Round trip phases reported in TransportError.Op.
const (
	OpDial  = "dial"
	OpWrite = "write"
	OpRead  = "read"
)

// ReadMode selects how the reply is collected.
type ReadMode string

const (
	ReadOnce       ReadMode = "once"
	ReadUntilClose ReadMode = "eof"
)

// ParseReadMode converts user input into a ReadMode.
func ParseReadMode(s string) (ReadMode, error) {
	switch ReadMode(strings.ToLower(strings.TrimSpace(s))) {
	case ReadOnce, "":
		return ReadOnce, nil
	case ReadUntilClose:
		return ReadUntilClose, nil
	}
	return "", fmt.Errorf("invalid read mode: %s. Valid options are 'once' or 'eof'", s)
}

// Response is the decoded reply of one round trip.
type Response struct {
	// Text holds exactly the bytes received, without padding.
	Text string `json:"text" yaml:"text"`

	// Bytes is the number of bytes kept in Text.
	Bytes int `json:"bytes" yaml:"bytes"`

	// Truncated is set when the reply filled the buffer. In ReadUntilClose
	// mode it is only set if more bytes actually followed.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// Client executes command round trips. A Client holds configuration only
// and is safe for concurrent use.
type Client struct {
	dialer     Dialer
	bufferSize int
	readMode   ReadMode
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the direct TCP dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithBufferSize sets the reply capacity. Non-positive values keep the default.
func WithBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithReadMode selects the framing used to collect the reply.
func WithReadMode(m ReadMode) Option {
	return func(c *Client) {
		if m != "" {
			c.readMode = m
		}
	}
}

// WithTimeout bounds each round trip. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for round trip diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Client with the given options applied.
func New(opts ...Option) *Client {
	c := &Client{
		dialer:     &net.Dialer{},
		bufferSize: DefaultBufferSize,
		readMode:   ReadOnce,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BufferSize returns the reply capacity.
func (c *Client) BufferSize() int {
	return c.bufferSize
}

// Execute performs one round trip and blocks until it completes.
func (c *Client) Execute(ctx context.Context, ep Endpoint, command string) (Response, error) {
	if err := ep.Validate(); err != nil {
		return Response{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log := c.logger.With("endpoint", ep.Address(), "command", command)
	start := time.Now()

	conn, err := c.dialer.DialContext(ctx, "tcp", ep.Address())
	if err != nil {
		err = classify(OpDial, ep, err)
		log.Debug("dial failed", "error", err)
		return Response{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock pending I/O when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := io.WriteString(conn, command); err != nil {
		err = classify(OpWrite, ep, withContext(ctx, err))
		log.Debug("write failed", "error", err)
		return Response{}, err
	}

	var resp Response
	switch c.readMode {
	case ReadUntilClose:
		resp, err = c.readUntilClose(conn)
	default:
		resp, err = c.readOnce(conn)
	}
	if err != nil {
		err = classify(OpRead, ep, withContext(ctx, err))
		log.Debug("read failed", "error", err)
		return Response{}, err
	}

	log.Debug("round trip complete",
		"bytes", resp.Bytes,
		"truncated", resp.Truncated,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return resp, nil
}

// readOnce issues a single Read. Whatever arrived is the reply.
func (c *Client) readOnce(r io.Reader) (Response, error) {
	buf := make([]byte, c.bufferSize)
	n, err := r.Read(buf)
	if err != nil && n == 0 && !errors.Is(err, io.EOF) {
		return Response{}, err
	}
	return Response{
		Text:      string(buf[:n]),
		Bytes:     n,
		Truncated: n == len(buf),
	}, nil
}

// readUntilClose reads until EOF, keeping at most bufferSize bytes.
func (c *Client) readUntilClose(r io.Reader) (Response, error) {
	buf := make([]byte, c.bufferSize)
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		// Buffer is full; one more byte tells whether the reply was cut.
		var probe [1]byte
		m, perr := r.Read(probe[:])
		if perr != nil && m == 0 && !errors.Is(perr, io.EOF) {
			return Response{}, perr
		}
		return Response{Text: string(buf), Bytes: n, Truncated: m > 0}, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return Response{Text: string(buf[:n]), Bytes: n}, nil
	default:
		return Response{}, err
	}
}

// withContext attaches the context's error when it ended the I/O. The
// connection deadline can fire just before the context timer does.
func withContext(ctx context.Context, err error) error {
	cerr := ctx.Err()
	if deadline, ok := ctx.Deadline(); ok && cerr == nil && !time.Now().Before(deadline) {
		cerr = context.DeadlineExceeded
	}
	if cerr != nil {
		return fmt.Errorf("%w: %w", cerr, err)
	}
	return err
}
