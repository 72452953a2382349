package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/panetree/pkg/layout"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "panetree"
	DefaultMongoCollection = "workspaces"
)

// MongoStore keeps one document per workspace. The tree is stored as a
// nested id-to-node document rather than an opaque blob, so it can be
// inspected with ordinary queries.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoRecord is the document shape of a Record.
type mongoRecord struct {
	Name      string                    `bson:"_id"`
	Nodes     map[layout.ID]layout.Node `bson:"nodes"`
	Version   int64                     `bson:"version"`
	UpdatedAt time.Time                 `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the workspaces collection of
// database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultMongoCollection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (*Record, error) {
	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s: %w", name, err)
	}

	tree, err := layout.FromNodes(doc.Nodes)
	if err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", name, err)
	}
	return &Record{
		Name:      doc.Name,
		Tree:      tree,
		Version:   doc.Version,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Put upserts the document only while the stored version is older. When a
// newer or equal version exists the filter misses, the upsert collides on
// _id, and the duplicate key error is reported as ErrConflict.
func (s *MongoStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	filter := bson.M{"_id": rec.Name, "version": bson.M{"$lt": rec.Version}}
	update := bson.M{"$set": bson.M{
		"nodes":      rec.Tree.Nodes(),
		"version":    rec.Version,
		"updated_at": rec.UpdatedAt,
	}}

	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s is at version %d or later", ErrConflict, rec.Name, rec.Version)
	}
	if err != nil {
		return fmt.Errorf("mongo put %s: %w", rec.Name, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}

	var docs []struct {
		Name string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
