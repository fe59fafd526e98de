package cart

import (
	"context"
	"errors"
)

// Storage persists serialized cart state under a session-scoped key.
type Storage interface {
	Get(ctx context.Context, key string) (*State, error)
	Set(ctx context.Context, key string, state *State) error
	Delete(ctx context.Context, key string) error
}

var ErrStateNotFound = errors.New("cart state not found")
