// Package mongostore implements checkpointer.Checkpointer on top of
// go.mongodb.org/mongo-driver/v2, grounded on goadesign-goa-ai's
// session.Store upsert-by-id pattern (UpsertRun/LoadRun), adapted from run
// metadata to conversation snapshots.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/supervisorrt/orchestrator/capability/checkpointer"
)

type doc struct {
	ThreadID  string `bson:"_id"`
	Data      []byte `bson:"data"`
	UpdatedAt int64  `bson:"updated_at"`
}

// Store adapts a Mongo collection to checkpointer.Checkpointer.
type Store struct {
	collection *mongo.Collection
}

// New wraps an already-configured collection, typically
// client.Database("supervisor").Collection("checkpoints").
func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection}
}

// Save implements checkpointer.Checkpointer via an upsert on thread id.
func (s *Store) Save(ctx context.Context, snap checkpointer.Snapshot) error {
	filter := bson.M{"_id": snap.ThreadID}
	update := bson.M{"$set": doc{
		ThreadID:  snap.ThreadID,
		Data:      snap.Data,
		UpdatedAt: snap.UpdatedAt.Unix(),
	}}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("mongostore: save %q: %w", snap.ThreadID, err)
	}
	return nil
}

// Load implements checkpointer.Checkpointer.
func (s *Store) Load(ctx context.Context, threadID string) (checkpointer.Snapshot, error) {
	var d doc
	err := s.collection.FindOne(ctx, bson.M{"_id": threadID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return checkpointer.Snapshot{}, checkpointer.ErrNotFound
	}
	if err != nil {
		return checkpointer.Snapshot{}, fmt.Errorf("mongostore: load %q: %w", threadID, err)
	}
	return checkpointer.Snapshot{
		ThreadID:  d.ThreadID,
		Data:      d.Data,
		UpdatedAt: time.Unix(d.UpdatedAt, 0).UTC(),
	}, nil
}

// Delete implements checkpointer.Checkpointer.
func (s *Store) Delete(ctx context.Context, threadID string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": threadID}); err != nil {
		return fmt.Errorf("mongostore: delete %q: %w", threadID, err)
	}
	return nil
}
