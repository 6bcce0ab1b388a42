package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

// ContactStatuses lists every status in display order.
var ContactStatuses = []ContactStatus{
	ContactStatusNew,
	ContactStatusRead,
	ContactStatusReplied,
	ContactStatusArchived,
}

func (s ContactStatus) Valid() bool {
	for _, v := range ContactStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ContactMessage is a visitor submission. Visitor metadata is kept for the
// operator only and is never serialized.
type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Subject   string             `bson:"subject" json:"subject"`
	Message   string             `bson:"message" json:"message"`
	Status    ContactStatus      `bson:"status" json:"status"`
	IPAddress string             `bson:"ipAddress,omitempty" json:"-"`
	UserAgent string             `bson:"userAgent,omitempty" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
