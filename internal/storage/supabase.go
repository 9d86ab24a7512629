package storage

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseGateway implements Gateway on top of Supabase Storage.
type SupabaseGateway struct {
	storage *storage_go.Client
	baseURL string // Supabase project URL, used to absolutize relative URLs
	logger  *logrus.Logger
}

// NewSupabaseGateway wraps the given storage client. baseURL is the Supabase
// project URL (e.g. https://xyz.supabase.co).
func NewSupabaseGateway(storage *storage_go.Client, baseURL string, logger *logrus.Logger) *SupabaseGateway {
	return &SupabaseGateway{
		storage: storage,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// PublicURL maps an object into its public bucket URL. Idempotent: the same
// input always yields the same URL, so it is safe to cache indefinitely.
func (g *SupabaseGateway) PublicURL(bucket, path string) string {
	resp := g.storage.GetPublicUrl(bucket, path)
	return g.absolutize(resp.SignedURL)
}

// SignedURL requests a signed URL with the given lifetime. Supabase returns a
// new token on every call, so the result is intentionally not idempotent.
func (g *SupabaseGateway) SignedURL(ctx context.Context, bucket, path string, ttlSeconds int) (string, error) {
	resp, err := g.storage.CreateSignedUrl(bucket, path, ttlSeconds)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"bucket": bucket,
			"path":   path,
			"error":  err.Error(),
		}).Error("Failed to create signed URL")
		return "", err
	}
	return g.absolutize(resp.SignedURL), nil
}

// absolutize prepends the project URL when Supabase hands back a relative
// path instead of a full URL.
func (g *SupabaseGateway) absolutize(u string) string {
	if u == "" || strings.HasPrefix(u, "http") {
		return u
	}
	if strings.HasPrefix(u, "/") {
		return g.baseURL + u
	}
	return g.baseURL + "/" + u
}
