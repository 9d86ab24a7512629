// Package playback turns an access verdict plus a video record into a
// playable URL: a stable public URL for free-tier assets, a short-lived
// signed URL for premium-tier assets.
package playback

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/internal/storage"
	"fitvod/api-gateway/models"
)

// SignedURLTTL is the fixed lifetime of premium playback URLs, in seconds.
// Expired URLs are never renewed in place; callers regenerate on demand.
const SignedURLTTL = 3600

// Resolver resolves playable URLs through the storage gateway.
type Resolver struct {
	gateway storage.Gateway
	logger  *logrus.Logger
	now     func() time.Time
}

// NewResolver creates a Resolver backed by the given gateway.
func NewResolver(gateway storage.Gateway, logger *logrus.Logger) *Resolver {
	return &Resolver{gateway: gateway, logger: logger, now: time.Now}
}

// ResolvePlayableURL produces a playback URL for the video. The caller must
// have run the access check already; resolution does not re-derive the
// verdict, it only refuses to proceed on a denying one.
//
// Free assets resolve to the same public URL on every call. Premium assets
// get a fresh signed token per call with a fixed lifetime, so callers must
// only resolve on demand (playback start or detected expiry), never
// speculatively.
func (r *Resolver) ResolvePlayableURL(ctx context.Context, video *models.Video, verdict access.Verdict) (models.PlayableURL, error) {
	if !verdict.HasAccess {
		return models.PlayableURL{}, apperrors.ErrAccessDenied
	}

	bucket, path, err := storage.SplitVideoRef(video.VideoURL, video.IsPremium)
	if err != nil {
		// Data-integrity bug: the write path should have rejected this
		// reference. Loud log, generic failure to the caller.
		r.logger.WithFields(logrus.Fields{
			"video_id":   video.ID,
			"video_url":  video.VideoURL,
			"is_premium": video.IsPremium,
			"error":      err.Error(),
		}).Error("Malformed storage reference on video record")
		return models.PlayableURL{}, apperrors.Wrap(apperrors.CodeInvalidURL, "invalid video storage reference", err)
	}

	if !video.IsPremium {
		return models.PlayableURL{URL: r.gateway.PublicURL(bucket, path)}, nil
	}

	signed, err := r.gateway.SignedURL(ctx, bucket, path, SignedURLTTL)
	if err != nil {
		return models.PlayableURL{}, apperrors.Wrap(apperrors.CodeNetworkError, "could not sign playback URL", err)
	}
	expires := r.now().Add(SignedURLTTL * time.Second)
	return models.PlayableURL{URL: signed, ExpiresAt: &expires}, nil
}
