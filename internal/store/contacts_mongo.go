package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
)

// ContactMongo keeps visitor messages in the "contactmessages" collection.
type ContactMongo struct {
	col *mongo.Collection
}

func NewContactMongo(db *mongo.Database) *ContactMongo {
	return &ContactMongo{col: db.Collection(ContactMessagesCollection)}
}

// EnsureIndexes supports newest-first listing, optionally by status.
func (c *ContactMongo) EnsureIndexes(ctx context.Context) error {
	_, err := c.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_status_created_at"),
		},
	})
	return translate(err)
}

func (c *ContactMongo) Insert(ctx context.Context, msg *models.ContactMessage) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	_, err := c.col.InsertOne(ctx, msg)
	return translate(err)
}

func (c *ContactMongo) List(ctx context.Context, status models.ContactStatus, skip, limit int64) ([]models.ContactMessage, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := c.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer cur.Close(ctx)

	msgs := []models.ContactMessage{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, 0, translate(err)
	}
	return msgs, total, nil
}

func (c *ContactMongo) Find(ctx context.Context, id primitive.ObjectID) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := c.col.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (c *ContactMongo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus, now time.Time) (*models.ContactMessage, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}

	var msg models.ContactMessage
	if err := c.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&msg); err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (c *ContactMongo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments)
	}
	return nil
}

func (c *ContactMongo) CountByStatus(ctx context.Context) (map[models.ContactStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := c.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status models.ContactStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, translate(err)
	}

	counts := make(map[models.ContactStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (c *ContactMongo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := c.col.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
	return n, translate(err)
}
