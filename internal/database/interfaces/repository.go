// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import (
	"context"
	"time"
)

// Repository is the item store of one project database.
type Repository interface {
	Save(ctx context.Context, collectionName string, data interface{}) <-chan RepositoryResult
	FindOne(ctx context.Context, collectionName string, filter interface{}) <-chan SingleResult
	Aggregate(ctx context.Context, collectionName string, pipeline interface{}) <-chan QueryResult

	// UpdateFields sets the given fields on the first matching document.
	UpdateFields(ctx context.Context, collectionName string, filter interface{}, updates map[string]interface{}) <-chan RepositoryResult
	// UnsetFields removes the given fields from the first matching document.
	UnsetFields(ctx context.Context, collectionName string, filter interface{}, fields []string) <-chan RepositoryResult

	Ping(ctx context.Context) <-chan error
}

// Provider hands out the repository of a project. Implementations share one
// connection pool across projects.
type Provider interface {
	ForProject(projectID string) Repository
}

// RepositoryResult represents the result of a repository operation
type RepositoryResult struct {
	Result interface{}
	Error  error
}

// QueryResult represents a query result cursor
type QueryResult interface {
	Next() bool
	Decode(v interface{}) error
	Close()
	Error() error
}

// SingleResult represents a single document result
type SingleResult interface {
	Decode(v interface{}) error
	Error() error
	NoResult() bool
}

// Common errors
var (
	ErrNoDocuments      = NewRepositoryError("no documents found", "NOT_FOUND")
	ErrInvalidFilter    = NewRepositoryError("invalid filter", "INVALID_FILTER")
	ErrConnectionFailed = NewRepositoryError("database connection failed", "CONNECTION_FAILED")
)

// RepositoryError represents a repository specific error
type RepositoryError struct {
	Message string
	Code    string
	Time    time.Time
}

func (e *RepositoryError) Error() string {
	return e.Message
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(message, code string) *RepositoryError {
	return &RepositoryError{
		Message: message,
		Code:    code,
		Time:    time.Now(),
	}
}

// All drains a query result into documents and closes it.
func All(ctx context.Context, res QueryResult) ([]map[string]interface{}, error) {
	defer res.Close()
	if err := res.Error(); err != nil {
		return nil, err
	}
	docs := []map[string]interface{}{}
	for res.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var doc map[string]interface{}
		if err := res.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, res.Error()
}
