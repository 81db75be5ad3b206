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

// File: internal/client/errors.go
// Package: client
//
// Description:
// Error taxonomy for a command round trip. Every failure of Execute is a
// *TransportError whose Kind is either HostUnreachable or ConnectionError.
// Callers match on the kind with errors.Is and reach the socket error with
// errors.Unwrap.

package client

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// socksHostUnreachable is the message the SOCKS client reports for reply
// code 0x04, sent by a proxy that could not resolve or reach the target.
const socksHostUnreachable = "unknown error host unreachable"

// Kind classifies a transport failure.
type Kind string

const (
	// HostUnreachable means the host name could not be resolved.
	HostUnreachable Kind = "host_unreachable"
	// ConnectionError covers every other socket fault during connect,
	// write or read.
	ConnectionError Kind = "connection_error"
)

// Sentinel errors matched by TransportError.Is.
var (
	ErrHostUnreachable = errors.New("host unreachable")
	ErrConnection      = errors.New("connection error")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

// TransportError describes a failed round trip.
type TransportError struct {
	Kind     Kind
	Op       string
	Endpoint Endpoint
	Err      error
}

// Error returns the error message
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Endpoint, e.sentinel(), e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Endpoint, e.sentinel())
}

// Unwrap returns the wrapped socket error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *TransportError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *TransportError) sentinel() error {
	if e.Kind == HostUnreachable {
		return ErrHostUnreachable
	}
	return ErrConnection
}

// classify wraps a socket error from op into a TransportError.
func classify(op string, ep Endpoint, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	kind := ConnectionError
	if op == OpDial && unresolved(err) {
		kind = HostUnreachable
	}
	return &TransportError{Kind: kind, Op: op, Endpoint: ep, Err: err}
}

// unresolved reports whether a dial failed because the host could not be
// found, either by the local resolver or by a SOCKS proxy resolving on our
// behalf.
func unresolved(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && strings.HasPrefix(opErr.Op, "socks") && opErr.Err != nil {
		return opErr.Err.Error() == socksHostUnreachable
	}
	return false
}

// KindOf returns the Kind of err, or "" when err is not a transport error.
func KindOf(err error) Kind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
