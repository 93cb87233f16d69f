// Package store holds the key/record stores backing the login flow.
//
// Stores never evict: records carry their own (advisory) expiry and
// callers decide whether to honour it. Entries live until deleted
// explicitly or until the process exits.
package store

import "context"

// Store is a plain key -> record mapping.
// Put overwrites silently (last write wins), Delete of a missing key is a no-op.
// Take reads and removes a record in one step: of concurrent Takes on the
// same key at most one finds it.
type Store[V any] interface {
	Put(ctx context.Context, key string, value V) error
	Get(ctx context.Context, key string) (V, bool, error)
	Take(ctx context.Context, key string) (V, bool, error)
	Delete(ctx context.Context, key string) error
}

var (
	_ Store[string] = (*Memory[string])(nil)
	_ Store[string] = (*Redis[string])(nil)
)
