// Package store holds the per-resource document store contract and its
// Mongo and in-memory implementations.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// ValidationError reports a document that fails its schema constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a *ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validator is implemented by documents that can check themselves before a
// validated update is written.
type Validator interface {
	Validate() error
}

// Filter is an exact-match equality map over stored field names.
type Filter map[string]any

// Patch lists the fields an update sets. Keys are stored field names. A nil
// value stores null, which clears an optional field.
type Patch = bson.M

// Collection is the store contract for one resource type. Callers assign
// document ids before Create.
type Collection[T any] interface {
	Create(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	FindOne(ctx context.Context, f Filter) (*T, error)
	Find(ctx context.Context, f Filter, opts ...FindOption) ([]T, error)
	UpdateByID(ctx context.Context, id string, patch Patch, validate bool) (*T, error)
	DeleteByID(ctx context.Context, id string) (*T, error)
	Count(ctx context.Context, f Filter) (int64, error)
}

type findOptions struct {
	sortField string
	sortDesc  bool
}

type FindOption func(*findOptions)

// SortBy orders Find results by field.
func SortBy(field string, desc bool) FindOption {
	return func(o *findOptions) {
		o.sortField = field
		o.sortDesc = desc
	}
}

func collectOptions(opts []FindOption) findOptions {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validate(doc any) error {
	if v, ok := doc.(Validator); ok {
		return v.Validate()
	}
	return nil
}
