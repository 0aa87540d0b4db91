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

package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nakadigo/pkg/logger"
	"nakadigo/pkg/model"
	"nakadigo/pkg/optional"
	"nakadigo/pkg/stream"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	checkpointCollectionName string = "sync_checkpoint" // The collection used for checkpointing the mirror
)

var _ stream.SnapshotSink = (*SnapshotStore)(nil)

// SnapshotStore
// Keeps the latest known definition of every event type, one document per
// event type keyed by name, plus a single checkpoint document.
type SnapshotStore struct {
	databaseName   string
	collectionName string
	C              *mongo.Collection
	chkPoint       *mongo.Collection
	chkPointOid    *primitive.ObjectID // The checkpoint entry id, nil until one exists
	log            *logger.Logger
}

// SnapshotRecord
// The record schema for the snapshot collection. Definition holds the event
// type in its Nakadi JSON form.
type SnapshotRecord struct {
	Name        string    `bson:"_id"`
	Definition  string    `bson:"definition"`
	Fingerprint int64     `bson:"fingerprint"`
	ObservedAt  time.Time `bson:"observedAt"`
}

// CheckpointRecord
// The record schema for the checkpoint collection
type CheckpointRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	CreatedDate    time.Time          `bson:"createdDate,omitempty"`
	LastUpdate     *time.Time         `bson:"lastUpdate,omitempty"`
	LastObservedAt time.Time          `bson:"lastObservedAt"`
}

// NewSnapshotStore
// Opens the snapshot collection and recovers the checkpoint entry if there is one.
func NewSnapshotStore(ctx context.Context, S *Session, databaseName string, collectionName string) (*SnapshotStore, error) {
	db := S.Client().Database(databaseName)

	store := &SnapshotStore{
		databaseName:   databaseName,
		collectionName: collectionName,
		C:              db.Collection(collectionName),
		chkPoint:       db.Collection(checkpointCollectionName),
		log:            S.log.WithFields("databaseName", databaseName, "collectionName", collectionName),
	}

	record, err := store.loadCheckpoint(ctx)
	if err != nil {
		return nil, err
	}
	record.IfSome(func(r CheckpointRecord) {
		oid := r.ID
		store.chkPointOid = &oid
		store.log.InfoWithFields("Checkpoint information recovered", "checkpointOid", oid.Hex(),
			"lastObservedAt", r.LastObservedAt)
	})
	return store, nil
}

func (store *SnapshotStore) Name() string {
	return fmt.Sprintf("%s-%s", store.databaseName, store.collectionName)
}

func (store *SnapshotStore) loadCheckpoint(ctx context.Context) (optional.Option[CheckpointRecord], error) {
	cursor, err := store.chkPoint.Find(ctx, bson.M{})
	if err != nil {
		return optional.None[CheckpointRecord](), errors.Wrap(err, "find checkpoint")
	}

	var entries []CheckpointRecord
	if err = cursor.All(ctx, &entries); err != nil {
		return optional.None[CheckpointRecord](), errors.Wrap(err, "read checkpoint")
	}
	// We expect only one checkpoint entry
	if len(entries) > 1 {
		store.log.ErrorWithFields("Expected only one entry for checkpoint", "entries", len(entries))
		return optional.None[CheckpointRecord](), errors.New("more than one checkpoint entry")
	}
	if len(entries) == 0 {
		return optional.None[CheckpointRecord](), nil
	}
	return optional.Some(entries[0]), nil
}

// Write
// Upserts changed event types and removes deleted ones in a single ordered bulk write.
//
// NOTE: We assume that this function is called from only a single goroutine
// at any point in time.
func (store *SnapshotStore) Write(ctx context.Context, events []stream.SnapshotEvent) error {
	if len(events) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(events))
	for _, event := range events {
		filter := bson.M{"_id": event.EventType.Name}
		if event.Deleted {
			models = append(models, mongo.NewDeleteOneModel().SetFilter(filter))
			continue
		}

		definition, err := json.Marshal(event.EventType)
		if err != nil {
			return errors.Wrapf(err, "encode event type %s", event.EventType.Name)
		}
		record := SnapshotRecord{
			Name:        event.EventType.Name,
			Definition:  string(definition),
			Fingerprint: int64(event.Fingerprint),
			ObservedAt:  event.ObservedAt.UTC(),
		}
		models = append(models, mongo.NewReplaceOneModel().SetFilter(filter).SetReplacement(record).SetUpsert(true))
	}

	result, err := store.C.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		store.log.ErrorWithFields("Bulk write failed", "length", len(models), "error", err.Error())
		return errors.Wrap(err, "bulk write snapshots")
	}

	store.log.DebugWithFields("Snapshots written", "upserted", result.UpsertedCount,
		"modified", result.ModifiedCount, "deleted", result.DeletedCount)
	return nil
}

// Checkpoint
// Persists the observation time of the newest written snapshot so a restarted
// mirror knows how fresh the stored catalogue is.
func (store *SnapshotStore) Checkpoint(ctx context.Context, observedAt time.Time) error {
	currTime := time.Now().UTC()

	if store.chkPointOid == nil {
		// No checkpoint entry yet. Create one and remember its oid for the next updates.
		record := CheckpointRecord{
			CreatedDate:    currTime,
			LastUpdate:     &currTime,
			LastObservedAt: observedAt.UTC(),
		}
		res, err := store.chkPoint.InsertOne(ctx, record)
		if err != nil {
			store.log.ErrorWithFields("Failed to insert entry to checkpoint table", "error", err.Error())
			return errors.Wrap(err, "insert checkpoint")
		}
		oid, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return errors.Errorf("unexpected checkpoint id type %T", res.InsertedID)
		}
		store.chkPointOid = &oid
		return nil
	}

	update := bson.M{"$set": bson.M{
		"lastUpdate":     currTime,
		"lastObservedAt": observedAt.UTC(),
	}}
	if _, err := store.chkPoint.UpdateByID(ctx, *store.chkPointOid, update); err != nil {
		store.log.ErrorWithFields("Failed to update checkpoint entry", "error", err.Error())
		return errors.Wrap(err, "update checkpoint")
	}
	return nil
}

// LastCheckpoint returns the observation time stored by the last Checkpoint call.
func (store *SnapshotStore) LastCheckpoint(ctx context.Context) (optional.Option[time.Time], error) {
	record, err := store.loadCheckpoint(ctx)
	if err != nil {
		return optional.None[time.Time](), err
	}
	return optional.Map(record, func(r CheckpointRecord) time.Time {
		return r.LastObservedAt
	}), nil
}

// Load returns the stored definition of one event type.
func (store *SnapshotStore) Load(ctx context.Context, name string) (optional.Option[model.EventType], error) {
	var record SnapshotRecord
	err := store.C.FindOne(ctx, bson.M{"_id": name}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return optional.None[model.EventType](), nil
	}
	if err != nil {
		return optional.None[model.EventType](), errors.Wrapf(err, "load event type %s", name)
	}

	var et model.EventType
	if err := json.Unmarshal([]byte(record.Definition), &et); err != nil {
		return optional.None[model.EventType](), errors.Wrapf(err, "decode event type %s", name)
	}
	return optional.Some(et), nil
}

// Fingerprints returns the stored fingerprint of every event type.
func (store *SnapshotStore) Fingerprints(ctx context.Context) (map[string]uint64, error) {
	cursor, err := store.C.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"fingerprint": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "find snapshots")
	}
	var records []SnapshotRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "read snapshots")
	}

	fingerprints := make(map[string]uint64, len(records))
	for _, r := range records {
		fingerprints[r.Name] = uint64(r.Fingerprint)
	}
	return fingerprints, nil
}
