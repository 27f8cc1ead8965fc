package project

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/bteditor/pkg/errors"
)

// Default database and collection used by NewMongoStore.
const (
	DefaultMongoDatabase   = "bteditor"
	DefaultMongoCollection = "projects"
)

// mongoRecord is the stored document. Data holds the Marshal encoding so
// parameter values keep their JSON types.
type mongoRecord struct {
	Name    string    `bson:"_id"`
	SavedAt time.Time `bson:"saved_at"`
	Trees   int       `bson:"trees"`
	Data    string    `bson:"data"`
}

// MongoStore stores one document per project in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses the default database and
// collection.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoStoreFromCollection(client, client.Database(DefaultMongoDatabase).Collection(DefaultMongoCollection)), nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close
// disconnects client.
func NewMongoStoreFromCollection(client *mongo.Client, coll *mongo.Collection) *MongoStore {
	return &MongoStore{client: client, coll: coll}
}

func (s *MongoStore) Save(ctx context.Context, p *Project) (err error) {
	defer track(ctx, "mongo", "save", time.Now(), &err)
	if err := errors.ValidateProjectName(p.Name); err != nil {
		return err
	}

	data, err := Marshal(p)
	if err != nil {
		return err
	}
	rec := mongoRecord{Name: p.Name, SavedAt: p.SavedAt, Trees: len(p.Trees), Data: string(data)}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": p.Name}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save project to mongo: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (p *Project, err error) {
	defer track(ctx, "mongo", "load", time.Now(), &err)
	if err := errors.ValidateProjectName(name); err != nil {
		return nil, err
	}

	var rec mongoRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load project from mongo: %w", err)
	}
	return Unmarshal([]byte(rec.Data))
}

func (s *MongoStore) Delete(ctx context.Context, name string) (err error) {
	defer track(ctx, "mongo", "delete", time.Now(), &err)
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("delete project from mongo: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) (names []string, err error) {
	defer track(ctx, "mongo", "list", time.Now(), &err)

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var recs []mongoRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for _, r := range recs {
		names = append(names, r.Name)
	}
	return names, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
