// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData is returned when a GraphQL response carries no data object.
	ErrMissingData = errors.New("graphql response contains no data")

	// ErrInvalidWindow is returned when a sync window does not end after it starts.
	ErrInvalidWindow = errors.New("sync window end must be after start")
)

// ErrInvalidRepoFormat is returned when a repository string is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// ErrUnsupportedDatabase is returned when DB_URL names a scheme no store implements.
type ErrUnsupportedDatabase struct {
	Scheme string
}

func (e *ErrUnsupportedDatabase) Error() string {
	return fmt.Sprintf("unsupported database scheme %q, expected postgres or sqlite", e.Scheme)
}

// GraphQLError carries the messages of a GraphQL errors array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql errors: %v", e.Messages)
}

// Unwrap reports ErrMissingData; a GraphQLError is only built for responses without data.
func (e *GraphQLError) Unwrap() error {
	return ErrMissingData
}
