package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Collection backed by a MongoDB collection.
type Mongo[T any] struct {
	coll *mongo.Collection
}

var _ Collection[struct{}] = (*Mongo[struct{}])(nil)

func NewMongo[T any](db *mongo.Database, name string) *Mongo[T] {
	return &Mongo[T]{coll: db.Collection(name)}
}

// EnsureUniqueIndex creates a unique index on field if it does not exist.
func (m *Mongo[T]) EnsureUniqueIndex(ctx context.Context, field string) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo[T]) Create(ctx context.Context, doc *T) error {
	_, err := m.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *Mongo[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return m.FindOne(ctx, Filter{"_id": oid})
}

func (m *Mongo[T]) FindOne(ctx context.Context, f Filter) (*T, error) {
	var out T
	err := m.coll.FindOne(ctx, toBSON(f)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *Mongo[T]) Find(ctx context.Context, f Filter, opts ...FindOption) ([]T, error) {
	o := collectOptions(opts)
	findOpts := options.Find()
	if o.sortField != "" {
		dir := 1
		if o.sortDesc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: o.sortField, Value: dir}})
	}

	cursor, err := m.coll.Find(ctx, toBSON(f), findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByID sets the fields in patch and returns the updated document.
// With validate set, the merged document is checked before the write.
// There is no version check: concurrent updates are last-write-wins.
func (m *Mongo[T]) UpdateByID(ctx context.Context, id string, patch Patch, validateDoc bool) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	delete(patch, "_id")

	if validateDoc {
		var current bson.M
		err := m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&current)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		for k, v := range patch {
			current[k] = v
		}
		merged, err := decodeM[T](current)
		if err != nil {
			return nil, err
		}
		if err := validate(merged); err != nil {
			return nil, err
		}
	}

	if len(patch) == 0 {
		return m.FindOne(ctx, Filter{"_id": oid})
	}

	var out T
	err = m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": patch},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrDuplicate
	case err != nil:
		return nil, err
	}
	return &out, nil
}

func (m *Mongo[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var out T
	err = m.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *Mongo[T]) Count(ctx context.Context, f Filter) (int64, error) {
	return m.coll.CountDocuments(ctx, toBSON(f))
}

func toBSON(f Filter) bson.M {
	if f == nil {
		return bson.M{}
	}
	return bson.M(f)
}

func decodeM[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
