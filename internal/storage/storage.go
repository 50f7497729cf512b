// Package storage is the gateway's local state store: a small key/value
// contract holding the auth token, the user profile and per-user cart
// snapshots. Concurrent gateway sessions share it last-writer-wins, the same
// way browser tabs share web storage.
package storage

import "context"

type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
