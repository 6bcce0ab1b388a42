package store

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

// Users stores admin accounts in the "users" collection.
type Users struct {
	col *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{col: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique username/email indexes and a sparse
// unique index on mobile.
func (u *Users) EnsureIndexes(ctx context.Context) error {
	_, err := u.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("users_username_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("users_email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetName("users_mobile_unique").SetUnique(true).SetSparse(true),
		},
	})
	return translate(err)
}

func (u *Users) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": strings.ToLower(login)},
	}}
	return u.findOne(ctx, filter)
}

func (u *Users) FindConflict(ctx context.Context, username, email, mobile string) (*models.User, error) {
	or := bson.A{bson.M{"username": username}, bson.M{"email": email}}
	if mobile != "" {
		or = append(or, bson.M{"mobile": mobile})
	}
	return u.findOne(ctx, bson.M{"$or": or})
}

func (u *Users) LoginTaken(ctx context.Context, value string, except primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id": bson.M{"$ne": except},
		"$or": bson.A{
			bson.M{"username": value},
			bson.M{"email": strings.ToLower(value)},
		},
	}
	n, err := u.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (u *Users) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := u.col.InsertOne(ctx, user)
	return translate(err)
}

// Update applies upd. ClearReset removes both reset fields.
func (u *Users) Update(ctx context.Context, id primitive.ObjectID, upd services.UserUpdate) error {
	set := bson.M{"updatedAt": upd.UpdatedAt}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Password != nil {
		set["password"] = *upd.Password
	}
	if upd.ResetToken != nil {
		set["resetPasswordToken"] = *upd.ResetToken
	}
	if upd.ResetExpires != nil {
		set["resetPasswordExpires"] = *upd.ResetExpires
	}

	update := bson.M{"$set": set}
	if upd.ClearReset {
		update["$unset"] = bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""}
	}

	res, err := u.col.UpdateByID(ctx, id, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments)
	}
	return nil
}

func (u *Users) Count(ctx context.Context) (int64, error) {
	n, err := u.col.CountDocuments(ctx, bson.M{})
	return n, translate(err)
}

func (u *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := u.col.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
