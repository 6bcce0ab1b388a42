// Package store holds the MongoDB and PostgreSQL persistence for the
// portfolio. Driver errors are translated to apperr kinds at this boundary
// so services never import a driver.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

// translate maps a Mongo driver error onto an apperr kind.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return &apperr.DuplicateError{Field: duplicateField(err.Error())}
	}
	if isUnavailable(err) {
		return apperr.Unavailable(err)
	}
	return err
}

func isUnavailable(err error) bool {
	var sse topology.ServerSelectionError
	switch {
	case errors.As(err, &sse):
		return true
	case errors.Is(err, mongo.ErrClientDisconnected):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return true
	}
	return false
}

// translatePG maps a lib/pq error onto an apperr kind.
func translatePG(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &apperr.DuplicateError{Field: duplicateField(pqErr.Constraint)}
		case "08000", "08003", "08006", "57P01":
			return apperr.Unavailable(err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Unavailable(err)
	}
	return err
}

// duplicateField guesses the colliding field from an index or constraint name.
func duplicateField(detail string) string {
	detail = strings.ToLower(detail)
	switch {
	case strings.Contains(detail, "username"):
		return "Username"
	case strings.Contains(detail, "email"):
		return "Email"
	case strings.Contains(detail, "mobile"):
		return "Mobile number"
	case strings.Contains(detail, "singleton"):
		return "Document"
	default:
		return ""
	}
}
