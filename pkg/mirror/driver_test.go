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

package mirror_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nakadigo/pkg/logger"
	"nakadigo/pkg/mirror"
	"nakadigo/pkg/model"
	"nakadigo/pkg/optional"
	"nakadigo/pkg/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	eventTypes []model.EventType
	err        error
}

func (l staticLister) ListEventTypes(ctx context.Context) (optional.Option[[]model.EventType], error) {
	if l.err != nil {
		return optional.None[[]model.EventType](), l.err
	}
	return optional.Some(l.eventTypes), nil
}

type memoryStore struct {
	mu          sync.Mutex
	docs        map[string]model.EventType
	known       map[string]uint64
	checkpoints int
	loadErr     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string]model.EventType), known: make(map[string]uint64)}
}

func (s *memoryStore) Write(ctx context.Context, events []stream.SnapshotEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		if ev.Deleted {
			delete(s.docs, ev.EventType.Name)
			continue
		}
		s.docs[ev.EventType.Name] = ev.EventType
	}
	return nil
}

func (s *memoryStore) Checkpoint(ctx context.Context, observedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints++
	return nil
}

func (s *memoryStore) Fingerprints(ctx context.Context) (map[string]uint64, error) {
	return s.known, s.loadErr
}

func (s *memoryStore) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func options() stream.StreamOptions {
	return stream.StreamOptions{
		PollInterval:         10 * time.Millisecond,
		FlushInterval:        10 * time.Millisecond,
		BatchSize:            10,
		MaxWriteRetries:      1,
		InitialRetryInterval: time.Millisecond,
	}
}

func TestMirrorCopiesCatalogueUntilCancelled(t *testing.T) {
	lister := staticLister{eventTypes: []model.EventType{
		{Name: "order.ORDER_CREATED", OwningApplication: "order-service", Category: model.CategoryBusiness},
		{Name: "customer.CHANGED", OwningApplication: "customer-service", Category: model.CategoryData},
	}}
	store := newMemoryStore()
	store.known["removed.WHILE_DOWN"] = 1
	store.docs["removed.WHILE_DOWN"] = model.EventType{Name: "removed.WHILE_DOWN"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- mirror.NewDriver(lister, store, options(), logger.NewNopLogger()).Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		names := store.names()
		return len(names) == 2 && !contains(names, "removed.WHILE_DOWN")
	}, 2*time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"order.ORDER_CREATED", "customer.CHANGED"}, store.names())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("mirror did not stop after cancel")
	}
}

func TestMirrorReturnsWatcherError(t *testing.T) {
	store := newMemoryStore()
	err := mirror.NewDriver(staticLister{err: errors.New("503 from nakadi")}, store, options(),
		logger.NewNopLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503 from nakadi")
}

func TestMirrorFailsWhenStoreCannotBeRead(t *testing.T) {
	store := newMemoryStore()
	store.loadErr = errors.New("store offline")
	err := mirror.NewDriver(staticLister{}, store, options(), logger.NewNopLogger()).Run(context.Background())
	assert.ErrorContains(t, err, "store offline")
}

func TestMirrorRejectsInvalidOptions(t *testing.T) {
	opts := options()
	opts.BatchSize = 0
	err := mirror.NewDriver(staticLister{}, newMemoryStore(), opts, logger.NewNopLogger()).Run(context.Background())
	assert.Error(t, err)
}
