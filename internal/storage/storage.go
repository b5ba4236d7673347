// Package storage defines the key-value persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Well-known keys of the client state.
const (
	KeyCart          = "cart"
	KeyNotifications = "notifications"
	KeyGhostProfile  = "ghost_profile"
	KeyAuthToken     = "auth_token"
	KeyAuthUser      = "auth_user"
	KeyTelegramChats = "telegram_chats"
)

// Storage is the interface for all persistence operations.
// Values are opaque byte blobs; single-key writes are atomic, nothing else is.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error

	Close() error
}

// Namespaced prefixes every key with namespace and a colon.
type Namespaced struct {
	Storage
	namespace string
}

// WithNamespace wraps s so that all keys live under namespace.
func WithNamespace(s Storage, namespace string) *Namespaced {
	return &Namespaced{Storage: s, namespace: namespace}
}

func (n *Namespaced) key(k string) string {
	if n.namespace == "" {
		return k
	}
	return n.namespace + ":" + k
}

// Get reads the value stored under the namespaced key.
func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.Storage.Get(ctx, n.key(key))
}

// Set writes value under the namespaced key.
func (n *Namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.Storage.Set(ctx, n.key(key), value)
}

// Remove deletes the namespaced key.
func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.Storage.Remove(ctx, n.key(key))
}
