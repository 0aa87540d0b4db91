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

package stream

import (
	"context"
	"sync"
	"time"

	"nakadigo/pkg/logger"
	"nakadigo/pkg/model"
	"nakadigo/pkg/optional"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// EventTypeLister is the part of the Nakadi client the watcher needs.
type EventTypeLister interface {
	ListEventTypes(ctx context.Context) (optional.Option[[]model.EventType], error)
}

// EventTypeWatcher
// Implements the StreamProducerConsumerInterface interface.
// Polls the event type listing and sends a SnapshotEvent downstream for every
// event type that is new, changed or gone since the previous poll.
type EventTypeWatcher struct {
	lister       EventTypeLister
	opts         StreamOptions
	stopCh       chan struct{}        // Channel to stop the watcher from polling
	waitCh       chan struct{}        // Closed once the poll loop has exited
	consumerCh   chan<- SnapshotEvent // Consumer channel to which the events are sent
	streamError  *atomic.Error        // Error due to which the loop exited
	seen         map[string]model.EventType
	fingerprints map[string]uint64
	stats        statsCounter
	stopOnce     sync.Once
	log          *logger.Logger
}

// NewEventTypeWatcher
// Creates a watcher. Nothing is polled before Start.
func NewEventTypeWatcher(lister EventTypeLister, consumerCh chan<- SnapshotEvent, opts StreamOptions,
	log *logger.Logger) (*EventTypeWatcher, error) {

	if opts.PollInterval <= 0 {
		return nil, errors.Errorf("invalid poll interval %s", opts.PollInterval)
	}

	return &EventTypeWatcher{
		lister:       lister,
		opts:         opts,
		stopCh:       make(chan struct{}),
		waitCh:       make(chan struct{}),
		consumerCh:   consumerCh,
		streamError:  atomic.NewError(nil),
		seen:         make(map[string]model.EventType),
		fingerprints: make(map[string]uint64),
		log:          log.Named("watcher"),
	}, nil
}

// Seed registers fingerprints that are already persisted so that unchanged
// event types are not emitted again after a restart, and event types that
// disappeared while the watcher was down still produce a deletion.
// Must be called before Start.
func (watcher *EventTypeWatcher) Seed(fingerprints map[string]uint64) {
	for name, fp := range fingerprints {
		watcher.fingerprints[name] = fp
		watcher.seen[name] = model.EventType{Name: name}
	}
}

// Start
// The poll loop runs on its own goroutine. Returns the stop and wait channels.
func (watcher *EventTypeWatcher) Start() (chan struct{}, chan struct{}, error) {
	watcher.log.DebugWithFields("Event type watcher started", "pollInterval", watcher.opts.PollInterval)
	go watcher.run()
	return watcher.stopCh, watcher.waitCh, nil
}

// Stop
// Signals the loop, waits for it to exit and returns the recorded error.
// Safe to call more than once.
func (watcher *EventTypeWatcher) Stop() error {
	watcher.stopOnce.Do(func() {
		close(watcher.stopCh)
	})
	<-watcher.waitCh
	watcher.log.Info("Event type watcher stopped")
	return watcher.streamError.Load()
}

func (watcher *EventTypeWatcher) Error() error {
	return watcher.streamError.Load()
}

func (watcher *EventTypeWatcher) Stats() StreamStats {
	return watcher.stats.snapshot()
}

func (watcher *EventTypeWatcher) run() {
	defer close(watcher.waitCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-watcher.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(watcher.opts.PollInterval)
	defer ticker.Stop()

	for {
		if err := watcher.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			watcher.stats.errors.Inc()
			watcher.streamError.Store(err)
			watcher.log.ErrorWithFields("Event type poll failed", "error", err.Error())
			return
		}

		select {
		case <-watcher.stopCh:
			watcher.log.Info("Got notification to stop event type watcher")
			return
		case <-ticker.C:
		}
	}
}

// poll lists the event types once and emits the differences to the last listing.
func (watcher *EventTypeWatcher) poll(ctx context.Context) error {
	listed, err := watcher.lister.ListEventTypes(ctx)
	if err != nil {
		return errors.Wrap(err, "list event types")
	}
	eventTypes, ok := listed.Take()
	if !ok {
		watcher.log.Debug("No event types returned")
		return nil
	}

	observedAt := time.Now()
	current := make(map[string]struct{}, len(eventTypes))
	for _, et := range eventTypes {
		current[et.Name] = struct{}{}
		fp, err := et.Fingerprint()
		if err != nil {
			return errors.Wrapf(err, "fingerprint event type %s", et.Name)
		}
		if prev, known := watcher.fingerprints[et.Name]; known && prev == fp {
			continue
		}
		if err := watcher.emit(ctx, SnapshotEvent{EventType: et, Fingerprint: fp, ObservedAt: observedAt}); err != nil {
			return err
		}
		watcher.seen[et.Name] = et
		watcher.fingerprints[et.Name] = fp
	}

	for name, et := range watcher.seen {
		if _, listed := current[name]; listed {
			continue
		}
		if err := watcher.emit(ctx, SnapshotEvent{EventType: et, ObservedAt: observedAt, Deleted: true}); err != nil {
			return err
		}
		delete(watcher.seen, name)
		delete(watcher.fingerprints, name)
	}
	return nil
}

func (watcher *EventTypeWatcher) emit(ctx context.Context, event SnapshotEvent) error {
	select {
	case watcher.consumerCh <- event:
		watcher.stats.produced.Inc()
		watcher.log.DebugWithFields("Emitted event type snapshot", "eventType", event.EventType.Name,
			"deleted", event.Deleted)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
