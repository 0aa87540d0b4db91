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
	"context"
	"errors"
	"testing"
	"time"

	"nakadigo/pkg/logger"
	"nakadigo/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"secured default port", Config{Host: "nakadi.example.org", SecuredConnection: true}, "https://nakadi.example.org:443"},
		{"plain default port", Config{Host: "localhost"}, "http://localhost:80"},
		{"explicit port", Config{Host: "localhost", Port: 8080}, "http://localhost:8080"},
		{"ipv6", Config{Host: "::1", Port: 8080, SecuredConnection: true}, "https://[::1]:8080"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := test.cfg.BaseURL()
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrMissingHost)
	assert.ErrorIs(t, Config{Host: "   "}.Validate(), ErrMissingHost)
	assert.Error(t, Config{Host: "https://nakadi"}.Validate())
	assert.Error(t, Config{Host: "nakadi", Port: 70000}.Validate())
	assert.Error(t, Config{Host: "nakadi", RetryCount: -1}.Validate())
	assert.Error(t, Config{Host: "nakadi", EventTypeCacheSize: 10}.Validate())
	assert.NoError(t, Config{Host: "nakadi", EventTypeCacheSize: 10, EventTypeCacheTTL: time.Second}.Validate())

	_, err := NewClient(Config{}, logger.NewNopLogger())
	assert.ErrorIs(t, err, ErrMissingHost)
}

func TestDefaultConfigIsSecure(t *testing.T) {
	assert.True(t, DefaultConfig.SecuredConnection)
	assert.True(t, DefaultConfig.VerifySSLCertificate)
	assert.Empty(t, DefaultConfig.Host)
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken("abc")()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestEventTypeCache(t *testing.T) {
	cache := newEventTypeCache(2, time.Minute)
	cache.add(model.EventType{Name: "a"})
	cache.add(model.EventType{Name: "b"})
	cache.add(model.EventType{Name: "c"})
	assert.Equal(t, 2, cache.len())

	_, ok := cache.get("a")
	assert.False(t, ok)
	et, ok := cache.get("c")
	assert.True(t, ok)
	assert.Equal(t, "c", et.Name)

	cache.invalidate("c")
	_, ok = cache.get("c")
	assert.False(t, ok)
}

func TestEventTypeCacheExpires(t *testing.T) {
	cache := newEventTypeCache(2, 10*time.Millisecond)
	cache.add(model.EventType{Name: "a"})
	assert.Eventually(t, func() bool {
		_, ok := cache.get("a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestFutureGet(t *testing.T) {
	boom := errors.New("boom")
	f := Async(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})
	v, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	failed := Async(context.Background(), func(ctx context.Context) (int, error) {
		return 0, boom
	})
	_, err = failed.GetWithTimeout(time.Second)
	assert.ErrorIs(t, err, boom)

	block := make(chan struct{})
	defer close(block)
	pending := Async(context.Background(), func(ctx context.Context) (int, error) {
		<-block
		return 1, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pending.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
