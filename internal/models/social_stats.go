package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatTypeStatic  = "static"
	StatTypeDynamic = "dynamic"

	DefaultStatCategory = "experience"
)

// SocialStats is a singleton whose fields list is edited in place.
type SocialStats struct {
	Base   `bson:",inline"`
	Fields []StatField `bson:"fields" json:"fields"`
}

// StatField is one displayed statistic. ID is the stable identifier;
// LegacyID is the embedded document id older clients address fields by.
type StatField struct {
	LegacyID    primitive.ObjectID `bson:"_id" json:"_id"`
	ID          string             `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Value       any                `bson:"value" json:"value"`
	Category    string             `bson:"category" json:"category"`
	Type        string             `bson:"type" json:"type"`
	Unit        string             `bson:"unit" json:"unit"`
	Enabled     bool               `bson:"enabled" json:"enabled"`
	Order       int                `bson:"order" json:"order"`
	SourceURL   string             `bson:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
	LastUpdated time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}

// Matches reports whether fieldID names this field by either identifier.
func (f StatField) Matches(fieldID string) bool {
	if fieldID == "" {
		return false
	}
	if f.ID == fieldID {
		return true
	}
	return !f.LegacyID.IsZero() && f.LegacyID.Hex() == fieldID
}
