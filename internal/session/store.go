// Package session keeps per-visitor state between requests.
package session

import "context"

// Store holds one value of T per session id.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	// Update runs fn on the session's value, the zero value for an unknown
	// id, and stores the result unless fn fails. Updates to one id are
	// serialized.
	Update(ctx context.Context, id string, fn func(v *T) error) error
	Delete(ctx context.Context, id string) error
	NewID() string
}

// Cloner is implemented by values holding slices or maps. Stores hand out
// and keep clones so callers never share state with the stored value.
type Cloner[T any] interface {
	Clone() T
}

func clone[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
