/*
Copyright 2021 Arun Muralidharan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

*/

package nakadi

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TokenProvider supplies the bearer token for a request. It is called once per
// attempt, so providers may rotate tokens. An empty token sends no
// Authorization header.
type TokenProvider func() (string, error)

// StaticToken always returns token.
func StaticToken(token string) TokenProvider {
	return func() (string, error) {
		return token, nil
	}
}

// Config
// Everything needed to build a Client. Host is the only required field.
type Config struct {
	Host                 string        // host name or address, without scheme
	Port                 int           // 0 selects 443 for secured connections and 80 otherwise
	SecuredConnection    bool          // use TLS
	VerifySSLCertificate bool          // verify the server certificate chain and host name
	TokenProvider        TokenProvider // nil means unauthenticated
	RequestTimeout       time.Duration
	RetryCount           int
	RetryWaitTime        time.Duration
	RetryMaxWaitTime     time.Duration
	EventTypeCacheSize   int // 0 disables the event type cache
	EventTypeCacheTTL    time.Duration
}

// Default client configuration. Callers copy it and set Host.
var DefaultConfig Config = Config{
	SecuredConnection:    true,
	VerifySSLCertificate: true,
	RequestTimeout:       10 * time.Second,
	RetryCount:           3,
	RetryWaitTime:        100 * time.Millisecond,
	RetryMaxWaitTime:     2 * time.Second,
	EventTypeCacheSize:   256,
	EventTypeCacheTTL:    time.Minute,
}

var (
	ErrMissingHost = errors.New("nakadi: host is required")
	ErrTimeout     = errors.New("nakadi: timed out waiting for result")
)

// Validate reports the first configuration problem found.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Host) == "" {
		return ErrMissingHost
	}
	if strings.Contains(cfg.Host, "://") {
		return errors.Errorf("nakadi: host %q must not contain a scheme", cfg.Host)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return errors.Errorf("nakadi: invalid port %d", cfg.Port)
	}
	if cfg.RetryCount < 0 {
		return errors.Errorf("nakadi: invalid retry count %d", cfg.RetryCount)
	}
	if cfg.EventTypeCacheSize > 0 && cfg.EventTypeCacheTTL <= 0 {
		return errors.Errorf("nakadi: event type cache needs a positive ttl, got %s", cfg.EventTypeCacheTTL)
	}
	return nil
}

// BaseURL builds scheme://host:port from the configuration.
func (cfg Config) BaseURL() (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	scheme, port := "http", cfg.Port
	if cfg.SecuredConnection {
		scheme = "https"
	}
	if port == 0 {
		port = 80
		if cfg.SecuredConnection {
			port = 443
		}
	}
	return scheme + "://" + net.JoinHostPort(cfg.Host, strconv.Itoa(port)), nil
}
