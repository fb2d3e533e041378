package store

import (
	"context"

	"github.com/google/uuid"
)

// Ports for the planner's collaborators: a key-value persistence provider
// and a collision-free id source. Production wiring lives in
// internal/storage and here; tests substitute their own.
type (
	KV interface {
		// Get returns the stored value and whether the key was present.
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		// Set stores value under key, replacing any previous value.
		Set(ctx context.Context, key string, value string) error
	}

	IDSource interface {
		NewID() string
	}
)

// UUIDSource generates random UUIDs.
type UUIDSource struct{}

func (UUIDSource) NewID() string { return uuid.NewString() }
