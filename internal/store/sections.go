package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// singletonKey marks the one document of a singleton collection. A sparse
// unique index on it keeps concurrent upserts from creating a second one.
const (
	singletonField = "singleton"
	singletonKey   = "default"
)

// Collection names match the ones the Mongoose models used, so existing
// databases keep working.
const (
	HeadersCollection         = "headers"
	IntroductionsCollection   = "introductions"
	AboutsCollection          = "abouts"
	SkillsCollection          = "skills"
	ExperiencesCollection     = "experiences"
	ProjectsCollection        = "projects"
	EducationsCollection      = "educations"
	CertificatesCollection    = "certificates"
	ContactsCollection        = "contacts"
	LeftSidersCollection      = "leftsiders"
	FootersCollection         = "footers"
	SocialStatsCollection     = "socialstats"
	UsersCollection           = "users"
	ContactMessagesCollection = "contactmessages"
)

// Sections stores one portfolio section type in its own collection.
type Sections[T any] struct {
	col       *mongo.Collection
	singleton bool
	now       func() time.Time
}

func NewSections[T any](db *mongo.Database, collection string, singleton bool) *Sections[T] {
	return &Sections[T]{col: db.Collection(collection), singleton: singleton, now: time.Now}
}

// EnsureIndexes adopts a legacy singleton document (one written before the
// singleton key existed) and creates the sparse unique singleton index.
func (s *Sections[T]) EnsureIndexes(ctx context.Context) error {
	if !s.singleton {
		return nil
	}

	err := s.col.FindOne(ctx, bson.M{singletonField: singletonKey}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		var legacy struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		findOpts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
		if err := s.col.FindOne(ctx, bson.M{}, findOpts).Decode(&legacy); err == nil {
			if _, err := s.col.UpdateByID(ctx, legacy.ID, bson.M{"$set": bson.M{singletonField: singletonKey}}); err != nil {
				return translate(err)
			}
			zap.L().Info("adopted legacy singleton document",
				zap.String("collection", s.col.Name()), zap.String("id", legacy.ID.Hex()))
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return translate(err)
		}
	} else if err != nil {
		return translate(err)
	}

	_, err = s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: singletonField, Value: 1}},
		Options: options.Index().SetName("singleton_unique").SetUnique(true).SetSparse(true),
	})
	return translate(err)
}

// List returns every document in insertion order.
func (s *Sections[T]) List(ctx context.Context) ([]T, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	return docs, nil
}

// First returns the singleton document, preferring the keyed one, or nil.
func (s *Sections[T]) First(ctx context.Context) (*T, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: singletonField, Value: -1}, {Key: "_id", Value: 1}})
	var doc T
	err := s.col.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (s *Sections[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	fields, err := mutableFields(doc)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	id := primitive.NewObjectID()
	fields["_id"] = id
	fields["createdAt"] = now
	fields["updatedAt"] = now
	if s.singleton {
		fields[singletonField] = singletonKey
	}

	if _, err := s.col.InsertOne(ctx, fields); err != nil {
		return nil, translate(err)
	}
	return s.Find(ctx, id)
}

// Replace overwrites the mutable fields of the document with id, or only
// the named ones when only is non-empty.
func (s *Sections[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T, only ...string) (*T, error) {
	fields, err := mutableFields(doc, only...)
	if err != nil {
		return nil, err
	}
	fields["updatedAt"] = s.now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out T
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// Upsert writes the singleton document, creating it when absent.
func (s *Sections[T]) Upsert(ctx context.Context, doc *T, only ...string) (*T, error) {
	if !s.singleton {
		return nil, fmt.Errorf("upsert on list collection %s", s.col.Name())
	}
	fields, err := mutableFields(doc, only...)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	fields["updatedAt"] = now

	update := bson.M{
		"$set":         fields,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out T
	err = s.col.FindOneAndUpdate(ctx, bson.M{singletonField: singletonKey}, update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert created the document first; this one now matches it.
		err = s.col.FindOneAndUpdate(ctx, bson.M{singletonField: singletonKey}, update, opts).Decode(&out)
	}
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (s *Sections[T]) Delete(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var out T
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (s *Sections[T]) Find(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var out T
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// mutableFields encodes doc and strips the keys the store owns. A non-empty
// only keeps just those keys.
func mutableFields(doc any, only ...string) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	fields := bson.M{}
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for _, k := range []string{"_id", "createdAt", "updatedAt", singletonField} {
		delete(fields, k)
	}
	if len(only) == 0 {
		return fields, nil
	}
	kept := make(bson.M, len(only))
	for _, k := range only {
		if v, ok := fields[k]; ok {
			kept[k] = v
		}
	}
	return kept, nil
}
