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

// File: internal/client/dialer.go
// Package: client

package client

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/net/proxy"
)

// Dialer opens the connection used by a round trip.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, network, addr string) (net.Conn, error)

var _ Dialer = DialerFunc(nil)

func (d DialerFunc) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return d(ctx, network, addr)
}

// NewDialer returns a direct dialer, or a SOCKS dialer when proxyAddr is
// set. Accepted schemes are socks5, socks5h and socks (treated as socks5).
func NewDialer(proxyAddr string) (Dialer, error) {
	direct := &net.Dialer{}
	if proxyAddr == "" {
		return direct, nil
	}

	u, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("proxy: failed to parse %q: %w", proxyAddr, err)
	}
	if u.Scheme == "socks" {
		u.Scheme = "socks5"
	}

	d, err := proxy.FromURL(u, direct)
	if err != nil {
		return nil, fmt.Errorf("proxy: unsupported address %q: %w", proxyAddr, err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return DialerFunc(cd.DialContext), nil
	}
	return DialerFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}), nil
}
