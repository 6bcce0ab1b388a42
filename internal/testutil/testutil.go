// Package testutil has helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB connects to MONGO_TEST_URI and returns a throwaway database
// that is dropped when the test ends. The test is skipped when the variable
// is unset.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping MongoDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("portfolio_test_%s", primitive.NewObjectID().Hex()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// SetupTestPostgres connects to POSTGRES_TEST_URI with a throwaway schema
// on the search path. The schema is dropped when the test ends and the test
// is skipped when the variable is unset.
func SetupTestPostgres(t *testing.T) *sql.DB {
	t.Helper()

	uri := os.Getenv("POSTGRES_TEST_URI")
	if uri == "" {
		t.Skip("POSTGRES_TEST_URI not set; skipping PostgreSQL integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := fmt.Sprintf("portfolio_test_%s", primitive.NewObjectID().Hex())
	admin, err := sql.Open("postgres", uri)
	require.NoError(t, err)
	_, err = admin.ExecContext(ctx, `CREATE SCHEMA `+schema)
	require.NoError(t, err)

	db, err := sql.Open("postgres", withSearchPath(uri, schema))
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Close()
		_, _ = admin.ExecContext(ctx, `DROP SCHEMA `+schema+` CASCADE`)
		_ = admin.Close()
	})
	return db
}

// withSearchPath adds a search_path run-time parameter to a URL or
// key=value connection string.
func withSearchPath(uri, schema string) string {
	if strings.Contains(uri, "://") {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		return uri + sep + "search_path=" + schema
	}
	return uri + " search_path=" + schema
}

// SetupTestRedis connects to REDIS_TEST_URI and returns a key prefix unique
// to the test. Keys under the prefix are deleted when the test ends and the
// test is skipped when the variable is unset.
func SetupTestRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()

	uri := os.Getenv("REDIS_TEST_URI")
	if uri == "" {
		t.Skip("REDIS_TEST_URI not set; skipping Redis integration test")
	}

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := fmt.Sprintf("test:%s:", primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		iter := client.Scan(ctx, 0, "*"+prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
		_ = client.Close()
	})
	return client, prefix
}

// TestContext returns a context cancelled when the test ends.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WithChiURLParams attaches chi route parameters to r, as the router would.
func WithChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
