package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

// SectionStore persists one portfolio section collection.
type SectionStore[T any] interface {
	// List returns every document in insertion order.
	List(ctx context.Context) ([]T, error)
	// First returns the singleton document, or nil when none exists.
	First(ctx context.Context) (*T, error)
	// Find returns the document with id or an apperr.ErrNotFound error.
	Find(ctx context.Context, id primitive.ObjectID) (*T, error)
	Insert(ctx context.Context, doc *T) (*T, error)
	// Replace overwrites the mutable fields of an existing document. When
	// fields is non-empty only those keys are written.
	Replace(ctx context.Context, id primitive.ObjectID, doc *T, fields ...string) (*T, error)
	// Upsert writes the singleton document, creating it when absent. fields
	// restricts the write the same way Replace does.
	Upsert(ctx context.Context, doc *T, fields ...string) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*T, error)
}

// Invalidator is told whenever stored portfolio content changes.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// SectionService applies validation and the singleton/list update rules for
// one section type.
type SectionService[T any] struct {
	name      string
	store     SectionStore[T]
	singleton bool
	changes   Invalidator
}

// NewSectionService wires a section. name is the display name used in
// response messages ("Header", "Experience").
func NewSectionService[T any](name string, store SectionStore[T], singleton bool, changes Invalidator) *SectionService[T] {
	return &SectionService[T]{name: name, store: store, singleton: singleton, changes: changes}
}

func (s *SectionService[T]) Name() string { return s.name }

func (s *SectionService[T]) Singleton() bool { return s.singleton }

// Get returns the singleton document or nil.
func (s *SectionService[T]) Get(ctx context.Context) (*T, error) {
	return s.store.First(ctx)
}

func (s *SectionService[T]) List(ctx context.Context) ([]T, error) {
	return s.store.List(ctx)
}

// Add inserts a new document into a list section.
func (s *SectionService[T]) Add(ctx context.Context, doc *T) (*T, error) {
	if s.singleton {
		return nil, fmt.Errorf("%s is a singleton section: %w", s.name, apperr.ErrValidation)
	}
	if err := ValidateStruct(doc); err != nil {
		return nil, err
	}
	created, err := s.store.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return created, nil
}

// Update replaces every mutable field of the document identified by id. For
// singleton sections a zero id upserts the singleton.
func (s *SectionService[T]) Update(ctx context.Context, id primitive.ObjectID, doc *T) (*T, error) {
	if err := ValidateStruct(doc); err != nil {
		return nil, err
	}

	var (
		updated *T
		err     error
	)
	switch {
	case !id.IsZero():
		updated, err = s.store.Replace(ctx, id, doc)
	case s.singleton:
		updated, err = s.store.Upsert(ctx, doc)
	default:
		return nil, apperr.Invalid("_id", "_id is required")
	}
	if err != nil {
		return nil, s.notFound(err)
	}
	s.changed(ctx)
	return updated, nil
}

// Patch applies the keys listed in fields from patch onto the document with
// id, or onto the singleton when id is zero. Keys outside fields keep their
// stored values. The merged document is validated as a whole so a patch
// cannot blank a required field.
func (s *SectionService[T]) Patch(ctx context.Context, id primitive.ObjectID, patch *T, fields []string) (*T, error) {
	var (
		current *T
		err     error
	)
	switch {
	case !id.IsZero():
		current, err = s.store.Find(ctx, id)
		if err != nil {
			return nil, s.notFound(err)
		}
	case s.singleton:
		if current, err = s.store.First(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Invalid("_id", "_id is required")
	}

	merged := new(T)
	if current != nil {
		*merged = *current
	}
	keys := mergeFields(merged, patch, fields)
	if err := ValidateStruct(merged); err != nil {
		return nil, err
	}
	if len(keys) == 0 && current != nil {
		return current, nil
	}

	var updated *T
	if id.IsZero() {
		updated, err = s.store.Upsert(ctx, merged, keys...)
	} else {
		updated, err = s.store.Replace(ctx, id, merged, keys...)
	}
	if err != nil {
		return nil, s.notFound(err)
	}
	s.changed(ctx)
	return updated, nil
}

// Delete removes a list-section document and returns it.
func (s *SectionService[T]) Delete(ctx context.Context, id primitive.ObjectID) (*T, error) {
	if id.IsZero() {
		return nil, apperr.Invalid("_id", "_id is required")
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, s.notFound(err)
	}
	s.changed(ctx)
	return deleted, nil
}

func (s *SectionService[T]) notFound(err error) error {
	if isNotFound(err) {
		return apperr.NotFound(s.name)
	}
	return err
}

func (s *SectionService[T]) changed(ctx context.Context) {
	if s.changes != nil {
		s.changes.Invalidate(ctx)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
