package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrStateNotFound = errors.New("state not found")
)

type StateStore interface {
	// Get returns the blob stored under key, or ErrStateNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the blob stored under key.
	Set(ctx context.Context, key string, data []byte) error
}
