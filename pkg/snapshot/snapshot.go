// Package snapshot archives named dependency graphs in MongoDB.
//
// Snapshots let users keep the raw analyzer output of a codebase at a point
// in time and re-run layout or rendering later without re-analyzing. Each
// snapshot is a named document holding the full graph payload; names are
// unique per store and saving over an existing name replaces it.
package snapshot

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
)

const (
	defaultDatabase   = "codeatlas"
	defaultCollection = "snapshots"
	connectTimeout    = 10 * time.Second
)

// Snapshot is an archived dependency graph.
type Snapshot struct {
	Name       string      `json:"name" bson:"_id"`
	FolderPath string      `json:"folder_path,omitempty" bson:"folder_path,omitempty"`
	Graph      graph.Graph `json:"graph" bson:"graph"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
}

// Info is snapshot metadata without the graph payload, for listings.
type Info struct {
	Name       string    `json:"name" bson:"_id"`
	FolderPath string    `json:"folder_path,omitempty" bson:"folder_path,omitempty"`
	NodeCount  int       `json:"node_count" bson:"node_count"`
	EdgeCount  int       `json:"edge_count" bson:"edge_count"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Store persists snapshots. MongoStore is the production backend;
// MemoryStore backs tests and deployments without MongoDB.
type Store interface {
	// Save stores a snapshot, replacing any existing snapshot with the same name.
	Save(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by name.
	// Returns a SNAPSHOT_NOT_FOUND error if it doesn't exist.
	Get(ctx context.Context, name string) (*Snapshot, error)

	// List returns metadata for all snapshots, sorted by name.
	List(ctx context.Context) ([]Info, error)

	// Delete removes a snapshot by name.
	// Returns a SNAPSHOT_NOT_FOUND error if it doesn't exist.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MongoStore persists snapshots in a MongoDB collection, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB at the given URI
// (e.g. "mongodb://localhost:27017") and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mongodb unreachable")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(defaultDatabase).Collection(defaultCollection),
	}, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close is a no-op
// for the underlying client; the caller retains ownership.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// Save stores a snapshot, replacing any existing snapshot with the same name.
func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateSnapshotName(snap.Name); err != nil {
		return err
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": snap.Name},
		snap,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to save snapshot %q", snap.Name)
	}
	return nil
}

// Get retrieves a snapshot by name.
func (s *MongoStore) Get(ctx context.Context, name string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to load snapshot %q", name)
	}
	return &snap, nil
}

// List returns metadata for all snapshots, sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"folder_path": 1,
			"created_at":  1,
			"node_count":  bson.M{"$size": bson.M{"$ifNull": bson.A{"$graph.nodes", bson.A{}}}},
			"edge_count":  bson.M{"$size": bson.M{"$ifNull": bson.A{"$graph.edges", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to list snapshots")
	}
	defer cursor.Close(ctx)

	var infos []Info
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to decode snapshot listing")
	}
	return infos, nil
}

// Delete removes a snapshot by name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to delete snapshot %q", name)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
