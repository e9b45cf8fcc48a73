// Package session persists save slots. Every backend stores values as JSON
// under a caller-chosen slot id.
package session

import (
	"context"

	"github.com/google/uuid"
)

type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	// List returns every slot id in lexical order.
	List(ctx context.Context) ([]string, error)
	NewID() string
}

// NewID returns a fresh random slot id.
func NewID() string { return uuid.NewString() }
