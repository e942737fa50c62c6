// Package storage persists opaque values under fixed string keys.
package storage

import "context"

// KV is a key-value store with get/set semantics. A missing key is reported
// with found=false and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
