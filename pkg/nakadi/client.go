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

// Package nakadi is a client for the Nakadi event type REST API.
package nakadi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/url"

	"nakadigo/pkg/logger"
	"nakadigo/pkg/model"
	"nakadigo/pkg/optional"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

const eventTypesPath = "/event-types"

// ClientStats counts requests as seen by the caller, retries excluded.
type ClientStats struct {
	RequestsIssued uint64
	RequestsFailed uint64
	CacheHits      uint64
}

// Client
// Talks to one Nakadi installation. Safe for concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string
	tokens  TokenProvider
	cache   *eventTypeCache // nil when disabled

	requests  atomic.Uint64
	failures  atomic.Uint64
	cacheHits atomic.Uint64

	log *logger.Logger
}

// NewClient builds a client from a complete configuration.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}

	client := &Client{
		baseURL: baseURL,
		tokens:  cfg.TokenProvider,
		log:     log.Named("nakadi").WithFields("baseUrl", baseURL),
	}
	if cfg.EventTypeCacheSize > 0 {
		client.cache = newEventTypeCache(cfg.EventTypeCacheSize, cfg.EventTypeCacheTTL)
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !cfg.VerifySSLCertificate, // #nosec G402 -- opt-out is explicit in Config
	}

	client.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetTLSClientConfig(tlsConfig).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(cfg.RetryMaxWaitTime).
		AddRetryCondition(shouldRetry).
		OnBeforeRequest(client.authenticate)

	if !cfg.VerifySSLCertificate && cfg.SecuredConnection {
		client.log.Warn("Server certificate verification is disabled")
	}
	client.log.DebugWithFields("Nakadi client created", "retryCount", cfg.RetryCount,
		"requestTimeout", cfg.RequestTimeout, "eventTypeCacheSize", cfg.EventTypeCacheSize)

	return client, nil
}

// shouldRetry retries transport errors, throttling and server side failures.
// Cancelled or expired contexts are final.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// authenticate runs before every attempt so a rotating provider is honoured on retries.
func (client *Client) authenticate(_ *resty.Client, req *resty.Request) error {
	if client.tokens == nil {
		return nil
	}
	token, err := client.tokens()
	if err != nil {
		return errors.Wrap(err, "nakadi: token provider")
	}
	if token != "" {
		req.SetAuthToken(token)
	}
	return nil
}

// BaseURL is the scheme://host:port all requests go to.
func (client *Client) BaseURL() string {
	return client.baseURL
}

func (client *Client) Stats() ClientStats {
	return ClientStats{
		RequestsIssued: client.requests.Load(),
		RequestsFailed: client.failures.Load(),
		CacheHits:      client.cacheHits.Load(),
	}
}

// ListEventTypes GET /event-types.
// Absent when Nakadi answers 404 or an empty body; an empty JSON array is a
// present, empty list.
func (client *Client) ListEventTypes(ctx context.Context) (optional.Option[[]model.EventType], error) {
	var eventTypes []model.EventType
	found, err := client.getJSON(ctx, eventTypesPath, &eventTypes)
	if err != nil || !found {
		return optional.None[[]model.EventType](), err
	}
	if eventTypes == nil {
		eventTypes = []model.EventType{}
	}
	return optional.Some(eventTypes), nil
}

// ListEventTypesAsync runs ListEventTypes on its own goroutine.
func (client *Client) ListEventTypesAsync(ctx context.Context) *Future[optional.Option[[]model.EventType]] {
	return Async(ctx, client.ListEventTypes)
}

// GetEventType GET /event-types/{name}. Served from the cache when enabled.
func (client *Client) GetEventType(ctx context.Context, name string) (optional.Option[model.EventType], error) {
	if client.cache != nil {
		if et, ok := client.cache.get(name); ok {
			client.cacheHits.Inc()
			return optional.Some(et), nil
		}
	}

	var et model.EventType
	found, err := client.getJSON(ctx, eventTypePath(name), &et)
	if err != nil || !found {
		return optional.None[model.EventType](), err
	}
	if client.cache != nil {
		client.cache.add(et)
	}
	return optional.Some(et), nil
}

// GetEventTypeAsync runs GetEventType on its own goroutine.
func (client *Client) GetEventTypeAsync(ctx context.Context, name string) *Future[optional.Option[model.EventType]] {
	return Async(ctx, func(ctx context.Context) (optional.Option[model.EventType], error) {
		return client.GetEventType(ctx, name)
	})
}

// ListPartitions GET /event-types/{name}/partitions.
func (client *Client) ListPartitions(ctx context.Context, eventType string) (optional.Option[[]model.Partition], error) {
	var partitions []model.Partition
	found, err := client.getJSON(ctx, eventTypePath(eventType)+"/partitions", &partitions)
	if err != nil || !found {
		return optional.None[[]model.Partition](), err
	}
	if partitions == nil {
		partitions = []model.Partition{}
	}
	return optional.Some(partitions), nil
}

// CreateEventType POST /event-types.
func (client *Client) CreateEventType(ctx context.Context, et model.EventType) error {
	if et.Name == "" {
		return errors.New("nakadi: event type name is required")
	}
	if err := client.send(ctx, http.MethodPost, eventTypesPath, et); err != nil {
		return err
	}
	client.invalidate(et.Name)
	client.log.InfoWithFields("Event type created", "eventType", et.Name)
	return nil
}

// DeleteEventType DELETE /event-types/{name}.
func (client *Client) DeleteEventType(ctx context.Context, name string) error {
	if err := client.send(ctx, http.MethodDelete, eventTypePath(name), nil); err != nil {
		return err
	}
	client.invalidate(name)
	client.log.InfoWithFields("Event type deleted", "eventType", name)
	return nil
}

func (client *Client) invalidate(name string) {
	if client.cache != nil {
		client.cache.invalidate(name)
	}
}

func eventTypePath(name string) string {
	return eventTypesPath + "/" + url.PathEscape(name)
}

// getJSON decodes a 2xx body into out. Returns false without error for 404
// and for empty bodies.
func (client *Client) getJSON(ctx context.Context, path string, out interface{}) (bool, error) {
	client.requests.Inc()
	resp, err := client.http.R().SetContext(ctx).Get(path)
	if err != nil {
		client.failures.Inc()
		client.log.ErrorWithFields("Request failed", "method", http.MethodGet, "path", path, "error", err.Error())
		return false, errors.Wrapf(err, "nakadi: GET %s", path)
	}

	if resp.StatusCode() == http.StatusNotFound {
		client.log.DebugWithFields("Resource not found", "path", path)
		return false, nil
	}
	if !resp.IsSuccess() {
		client.failures.Inc()
		apiErr := newAPIError(http.MethodGet, path, resp)
		client.log.ErrorWithFields("Request rejected", "path", path, "status", resp.StatusCode(), "error", apiErr.Error())
		return false, apiErr
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		client.failures.Inc()
		return false, errors.Wrapf(err, "nakadi: decode GET %s", path)
	}
	return true, nil
}

func (client *Client) send(ctx context.Context, method, path string, body interface{}) error {
	client.requests.Inc()
	req := client.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		client.failures.Inc()
		client.log.ErrorWithFields("Request failed", "method", method, "path", path, "error", err.Error())
		return errors.Wrapf(err, "nakadi: %s %s", method, path)
	}
	if !resp.IsSuccess() {
		client.failures.Inc()
		apiErr := newAPIError(method, path, resp)
		client.log.ErrorWithFields("Request rejected", "method", method, "path", path,
			"status", resp.StatusCode(), "error", apiErr.Error())
		return apiErr
	}
	return nil
}
