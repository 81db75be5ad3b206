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

// File: internal/client/endpoint.go
// Package: client

package client

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultEndpoint is substituted when the caller leaves host or port blank.
var DefaultEndpoint = Endpoint{Host: "172.17.2.96", Port: 666}

// Endpoint identifies the remote command receiver.
type Endpoint struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Address returns host:port suitable for dialing.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Address()
}

// Validate checks that the host is set and the port is in range.
func (e Endpoint) Validate() error {
	if e.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidEndpoint)
	}
	if e.Port < 1 || e.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range [1,65535]", ErrInvalidEndpoint, e.Port)
	}
	return nil
}

// ParseEndpoint builds an Endpoint from free-text host and port input.
// If either field is blank the fallback endpoint is returned as a whole.
func ParseEndpoint(host, port string, fallback Endpoint) (Endpoint, error) {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	if host == "" || port == "" {
		return fallback, fallback.Validate()
	}

	n, err := strconv.Atoi(port)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: port %q is not a number", ErrInvalidEndpoint, port)
	}
	ep := Endpoint{Host: host, Port: n}
	if err := ep.Validate(); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}
