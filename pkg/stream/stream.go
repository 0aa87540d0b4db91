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
	"time"

	"nakadigo/pkg/model"

	"go.uber.org/atomic"
)

type StreamStats struct {
	EventsProduced       uint64
	EventsConsumed       uint64
	RetriesBeforeFailure uint64
	ErrorsObserved       uint64
}

// StreamProducerConsumerInterface is implemented by both ends of a snapshot
// stream. Start returns a stop channel and a wait channel: closing the first
// asks the loop to exit, the second is closed once it has.
type StreamProducerConsumerInterface interface {
	Start() (chan struct{}, chan struct{}, error)
	Stop() error
	Error() error
	Stats() StreamStats
}

// SnapshotEvent
// One observed change of an event type definition. Deleted is set when an
// event type that was seen before is no longer listed.
type SnapshotEvent struct {
	EventType   model.EventType
	Fingerprint uint64
	ObservedAt  time.Time
	Deleted     bool
}

// SnapshotSink persists snapshot batches. Checkpoint records the observation
// time of the newest event in the last batch that was written successfully.
type SnapshotSink interface {
	Write(ctx context.Context, events []SnapshotEvent) error
	Checkpoint(ctx context.Context, observedAt time.Time) error
}

// StreamOptions
type StreamOptions struct {
	PollInterval         time.Duration // time between two listings of event types
	FlushInterval        time.Duration // max time an event stays buffered in the writer
	BatchSize            int           // writer flushes as soon as this many events are buffered
	MaxWriteRetries      uint64
	InitialRetryInterval time.Duration
}

// Default stream options that can be used directly
var DefaultStreamOptions StreamOptions = StreamOptions{
	PollInterval:         30 * time.Second,
	FlushInterval:        5 * time.Second,
	BatchSize:            50,
	MaxWriteRetries:      3,
	InitialRetryInterval: 500 * time.Millisecond,
}

type statsCounter struct {
	produced atomic.Uint64
	consumed atomic.Uint64
	retries  atomic.Uint64
	errors   atomic.Uint64
}

func (c *statsCounter) snapshot() StreamStats {
	return StreamStats{
		EventsProduced:       c.produced.Load(),
		EventsConsumed:       c.consumed.Load(),
		RetriesBeforeFailure: c.retries.Load(),
		ErrorsObserved:       c.errors.Load(),
	}
}
