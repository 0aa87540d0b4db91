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

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// SnapshotWriter
// Implements the StreamProducerConsumerInterface interface.
// Buffers snapshot events and writes them to the sink in batches.
type SnapshotWriter struct {
	sink        SnapshotSink
	opts        StreamOptions
	stopCh      chan struct{}
	waitCh      chan struct{}
	consumerCh  <-chan SnapshotEvent
	streamError *atomic.Error
	stats       statsCounter
	stopOnce    sync.Once
	log         *logger.Logger
}

// NewSnapshotWriter
// The consumer channel is passed in rather than created here so the same channel
// can be handed to the producer.
func NewSnapshotWriter(sink SnapshotSink, consumerCh <-chan SnapshotEvent, opts StreamOptions,
	log *logger.Logger) (*SnapshotWriter, error) {

	if opts.BatchSize <= 0 {
		return nil, errors.Errorf("invalid batch size %d", opts.BatchSize)
	}
	if opts.FlushInterval <= 0 {
		return nil, errors.Errorf("invalid flush interval %s", opts.FlushInterval)
	}

	return &SnapshotWriter{
		sink:        sink,
		opts:        opts,
		stopCh:      make(chan struct{}),
		waitCh:      make(chan struct{}),
		consumerCh:  consumerCh,
		streamError: atomic.NewError(nil),
		log:         log.Named("writer"),
	}, nil
}

// Start
// Starts the writer loop on a different goroutine.
func (writer *SnapshotWriter) Start() (chan struct{}, chan struct{}, error) {
	writer.log.DebugWithFields("Snapshot writer started", "batchSize", writer.opts.BatchSize,
		"flushInterval", writer.opts.FlushInterval)
	go writer.run()
	return writer.stopCh, writer.waitCh, nil
}

// Stop
// Stops the loop after flushing what is buffered and waits for it to exit.
func (writer *SnapshotWriter) Stop() error {
	writer.stopOnce.Do(func() {
		close(writer.stopCh)
	})
	<-writer.waitCh
	writer.log.Info("Snapshot writer stopped")
	return writer.streamError.Load()
}

func (writer *SnapshotWriter) Error() error {
	return writer.streamError.Load()
}

func (writer *SnapshotWriter) Stats() StreamStats {
	return writer.stats.snapshot()
}

// run
// 1. Each received event is appended to the buffer.
// 2. The buffer is written when it reaches BatchSize or on each ticker event.
// 3. On stop whatever is buffered or already queued is written before returning.
func (writer *SnapshotWriter) run() {
	defer close(writer.waitCh)

	ticker := time.NewTicker(writer.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]SnapshotEvent, 0, writer.opts.BatchSize)

	for {
		select {
		case <-writer.stopCh:
			writer.log.Info("Received stop signal for snapshot writer")
			batch = drainPending(writer.consumerCh, batch)
			if len(batch) > 0 {
				writer.flush(batch)
			}
			return

		case event := <-writer.consumerCh:
			batch = append(batch, event)
			if len(batch) < writer.opts.BatchSize {
				continue
			}
			if !writer.flush(batch) {
				return
			}
			batch = batch[:0]

		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
			if !writer.flush(batch) {
				return
			}
			// clear the list, but keep the allocated memory
			batch = batch[:0]
		}
	}
}

// drainPending appends whatever is already queued on ch without blocking.
func drainPending(ch <-chan SnapshotEvent, batch []SnapshotEvent) []SnapshotEvent {
	for {
		select {
		case event := <-ch:
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

// flush writes the batch with retries and then moves the checkpoint.
// Returns false when the error was recorded and the loop must exit.
func (writer *SnapshotWriter) flush(batch []SnapshotEvent) bool {
	if err := writer.writeWithRetries(batch); err != nil {
		writer.stats.errors.Inc()
		writer.streamError.Store(err)
		return false
	}
	writer.stats.consumed.Add(uint64(len(batch)))
	return true
}

func (writer *SnapshotWriter) writeWithRetries(batch []SnapshotEvent) error {
	ctx := context.Background()
	newest := batch[0].ObservedAt
	for _, event := range batch[1:] {
		if event.ObservedAt.After(newest) {
			newest = event.ObservedAt
		}
	}

	writer.log.DebugWithFields("Writing snapshot batch", "length", len(batch), "checkpoint", newest)

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = writer.opts.InitialRetryInterval
	policy := backoff.WithMaxRetries(expBackoff, writer.opts.MaxWriteRetries)

	operation := func() error {
		if err := writer.sink.Write(ctx, batch); err != nil {
			return errors.Wrap(err, "write snapshot batch")
		}
		if err := writer.sink.Checkpoint(ctx, newest); err != nil {
			return errors.Wrap(err, "write checkpoint")
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		writer.stats.retries.Inc()
		writer.log.ErrorWithFields("Snapshot write failed, retrying", "error", err.Error(), "wait", wait)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		writer.log.ErrorWithFields("Failed to write snapshot batch since max number of retries exceeded",
			"length", len(batch), "maxRetries", writer.opts.MaxWriteRetries, "error", err.Error())
		return err
	}
	return nil
}
