// Package storage is the only I/O boundary to Supabase Storage. Everything
// above it works against the Gateway interface so tests can swap in fakes.
package storage

import "context"

// Bucket names used by the platform. The bucket for a primary video asset is
// implied by its premium flag; thumbnails are always public.
const (
	BucketVideosFree    = "videos-free"
	BucketVideosPremium = "videos-premium"
	BucketThumbnails    = "thumbnails"
)

// Gateway defines the operations the core expects from the object store.
type Gateway interface {
	// PublicURL returns the permanent, unauthenticated URL for an object in
	// a public bucket. Pure string construction, no I/O.
	PublicURL(bucket, path string) string

	// SignedURL issues a fresh time-limited URL for an object in a private
	// bucket. Each call mints a new token; callers must not invoke it
	// speculatively.
	SignedURL(ctx context.Context, bucket, path string, ttlSeconds int) (string, error)
}
