package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an admin account. Secrets never serialize to JSON.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username             string             `bson:"username" json:"username"`
	Email                string             `bson:"email" json:"email"`
	Mobile               string             `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Password             string             `bson:"password" json:"-"`
	ResetPasswordToken   string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time         `bson:"resetPasswordExpires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}
