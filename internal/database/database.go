package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const defaultDatabaseName = "portfolio"

var Client *mongo.Client
var DB *mongo.Database

// Connect opens the MongoDB client, pings it and selects the database. The
// database name comes from dbName, then the URI path, then "portfolio".
func Connect(mongoURI, dbName string) error {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	zap.L().Info("connecting to MongoDB", zap.String("uri", MaskURI(mongoURI)))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	if dbName == "" {
		dbName = DatabaseNameFromURI(mongoURI)
	}

	Client = client
	DB = client.Database(dbName)

	zap.L().Info("connected to MongoDB", zap.String("database", dbName))
	return nil
}

func Disconnect() error {
	if Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}

// DatabaseNameFromURI extracts the path segment of a mongodb:// or
// mongodb+srv:// URI, e.g. mongodb://host:27017/portfolio?retryWrites=true.
func DatabaseNameFromURI(mongoURI string) string {
	rest := mongoURI
	if idx := strings.Index(rest, "://"); idx != -1 {
		rest = rest[idx+3:]
	}
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return defaultDatabaseName
	}
	name := strings.SplitN(rest[idx+1:], "?", 2)[0]
	if name == "" {
		return defaultDatabaseName
	}
	return name
}

// MaskURI hides the password component of a connection string for logging.
func MaskURI(uri string) string {
	schemeEnd := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if schemeEnd == -1 || at == -1 || at < schemeEnd {
		return uri
	}
	userInfo := uri[schemeEnd+3 : at]
	colon := strings.Index(userInfo, ":")
	if colon == -1 {
		return uri
	}
	return uri[:schemeEnd+3] + userInfo[:colon] + ":***" + uri[at:]
}
