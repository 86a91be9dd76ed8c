package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Werneck0live/personal-controller/internal/models"
)

const vectorsCollection = "vectors"

// MongoStore keeps one Mongo collection per record collection plus a
// "vectors" collection for the index. Search is brute force in process.
type MongoStore struct {
	db      *mongo.Database
	vectors *mongo.Collection
	dim     int
}

func NewMongoStore(db *mongo.Database, dim int) *MongoStore {
	return &MongoStore{db: db, vectors: db.Collection(vectorsCollection), dim: dim}
}

// EnsureIndexes creates the unique key indexes (partial, so records
// without a key are allowed) and the record_id index of the vectors.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	for _, c := range models.Collections {
		field := keyField(c)
		if field == "" {
			continue
		}
		model := mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_" + field).
				SetPartialFilterExpression(bson.M{field: bson.M{"$gt": ""}}),
		}
		if err := createIndex(ctx, s.db.Collection(c), model); err != nil {
			return fmt.Errorf("index %s.%s: %w", c, field, err)
		}
	}
	return createIndex(ctx, s.vectors, mongo.IndexModel{
		Keys:    bson.D{{Key: "collection", Value: 1}, {Key: "record_id", Value: 1}},
		Options: options.Index().SetName("by_record"),
	})
}

func createIndex(ctx context.Context, coll *mongo.Collection, model mongo.IndexModel) error {
	_, err := coll.Indexes().CreateOne(ctx, model)
	if err == nil {
		return nil
	}
	// Se já existir com outra opção, tenta dropar e recriar
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 85 { // IndexOptionsConflict
		name := *model.Options.Name
		if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr != nil {
			return fmt.Errorf("drop index %s: %w", name, dropErr)
		}
		_, err = coll.Indexes().CreateOne(ctx, model)
	}
	return err
}

func mapWriteErr(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *MongoStore) Insert(ctx context.Context, rec models.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	_, err := s.db.Collection(rec.Collection()).InsertOne(ctx, rec)
	return mapWriteErr(err)
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, dst any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) List(ctx context.Context, collection string, limit, skip int64, dst any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	opts := options.Find().SetLimit(limit).SetSkip(skip).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, dst)
}

func (s *MongoStore) Replace(ctx context.Context, rec models.Record) error {
	if rec.GetID() == "" {
		return ErrNotFound
	}
	if err := prepare(rec); err != nil {
		return err
	}
	res, err := s.db.Collection(rec.Collection()).ReplaceOne(ctx, bson.M{"_id": rec.GetID()}, rec)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.vectors.DeleteMany(ctx, bson.M{"collection": collection, "record_id": id})
	return err
}

func (s *MongoStore) Count(ctx context.Context, collection string) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	return s.db.Collection(collection).CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) Index(ctx context.Context, e IndexEntry) error {
	if err := checkEntry(e, s.dim); err != nil {
		return err
	}
	_, err := s.vectors.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Unindex(ctx context.Context, collection, id string) error {
	_, err := s.vectors.DeleteMany(ctx, bson.M{"collection": collection, "record_id": id})
	return err
}

func (s *MongoStore) Search(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, index is %d", ErrDimensionMismatch, len(vector), s.dim)
	}
	cur, err := s.vectors.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var entries []IndexEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return rank(vector, entries, topK)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
