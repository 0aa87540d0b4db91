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

// Package mirror keeps a copy of the Nakadi event type catalogue in a store.
package mirror

import (
	"context"

	"nakadigo/pkg/logger"
	"nakadigo/pkg/stream"

	"github.com/pkg/errors"
)

// Store is where the mirrored catalogue lives.
type Store interface {
	stream.SnapshotSink
	Fingerprints(ctx context.Context) (map[string]uint64, error)
}

// DriverContext
type DriverContext struct {
	lister stream.EventTypeLister
	store  Store
	opts   stream.StreamOptions
	log    *logger.Logger
}

// NewDriver
func NewDriver(lister stream.EventTypeLister, store Store, opts stream.StreamOptions, log *logger.Logger) *DriverContext {
	return &DriverContext{
		lister: lister,
		store:  store,
		opts:   opts,
		log:    log.Named("mirror"),
	}
}

// Run
// Starts the writer and the watcher and blocks until ctx is done or either
// side exits on its own. Both are stopped before returning; the first recorded
// error is returned.
func (driver *DriverContext) Run(ctx context.Context) error {
	known, err := driver.store.Fingerprints(ctx)
	if err != nil {
		return errors.Wrap(err, "load stored fingerprints")
	}

	consumeCh := make(chan stream.SnapshotEvent, max(driver.opts.BatchSize, 0))
	writer, err := stream.NewSnapshotWriter(driver.store, consumeCh, driver.opts, driver.log)
	if err != nil {
		return err
	}
	watcher, err := stream.NewEventTypeWatcher(driver.lister, consumeCh, driver.opts, driver.log)
	if err != nil {
		return err
	}
	watcher.Seed(known)

	_, wwaitCh, err := writer.Start()
	if err != nil {
		return err
	}
	_, pwaitCh, err := watcher.Start()
	if err != nil {
		_ = writer.Stop()
		return err
	}
	driver.log.InfoWithFields("Mirror started", "knownEventTypes", len(known),
		"pollInterval", driver.opts.PollInterval)

	select {
	case <-ctx.Done():
		driver.log.Info("Shutdown requested")
	case <-pwaitCh:
		driver.log.Warn("Watcher exited")
	case <-wwaitCh:
		driver.log.Warn("Writer exited")
	}

	// Producer first so nothing is sent to a stopped writer.
	perr := watcher.Stop()
	werr := writer.Stop()

	driver.log.InfoWithFields("Mirror stopped", "produced", watcher.Stats().EventsProduced,
		"written", writer.Stats().EventsConsumed)

	if perr != nil {
		driver.log.ErrorWithFields("Error in watcher", "error", perr.Error())
		return perr
	}
	if werr != nil {
		driver.log.ErrorWithFields("Error in writer", "error", werr.Error())
		return werr
	}
	return nil
}
