// Package catalog fetches and lists video metadata through the repository
// and normalizes storage paths into absolute URLs. Access decisions are not
// made here; the caller runs the access check independently of the backing
// store's row visibility, which is only a second line of defense.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/internal/storage"
	"fitvod/api-gateway/models"
)

// Service is the video lookup and admin write layer.
type Service struct {
	repo    Repository
	gateway storage.Gateway
	logger  *logrus.Logger
}

// NewService creates a catalog Service.
func NewService(repo Repository, gateway storage.Gateway, logger *logrus.Logger) *Service {
	return &Service{repo: repo, gateway: gateway, logger: logger}
}

// ParseVideoID validates the identifier format before any I/O. Only v4-style
// UUIDs are accepted; anything else fails fast with INVALID_INPUT.
func ParseVideoID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id.Version() != 4 {
		return uuid.Nil, apperrors.New(apperrors.CodeInvalidInput, "invalid video ID format")
	}
	return id, nil
}

// GetVideo fetches a single video by id. Returns apperrors.ErrNotFound when
// the row is absent or invisible. The thumbnail path is eagerly normalized
// to an absolute public URL; thumbnails are public regardless of tier, only
// the primary asset is gated.
func (s *Service) GetVideo(ctx context.Context, rawID string) (*models.Video, error) {
	id, err := ParseVideoID(rawID)
	if err != nil {
		return nil, err
	}

	video, err := s.repo.FetchVideoRow(ctx, id)
	if err != nil {
		return nil, err
	}

	s.normalizeThumbnail(video)
	return video, nil
}

// GetVideoForViewer is GetVideo with the listing visibility rule applied:
// non-admin viewers only see published records. An unpublished row collapses
// to the same not-found as an absent one, so neither its existence nor its
// tier is leaked. The repository runs with a privileged key, so row-level
// security cannot be trusted to do this hiding.
func (s *Service) GetVideoForViewer(ctx context.Context, rawID string, viewer access.Role) (*models.Video, error) {
	video, err := s.GetVideo(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if viewer != access.RoleAdmin && video.Status != models.StatusPublished {
		s.logger.WithFields(logrus.Fields{
			"video_id": video.ID,
			"status":   video.Status,
		}).Debug("Unpublished video hidden from viewer")
		return nil, apperrors.ErrNotFound
	}
	return video, nil
}

// ListVideos executes a validated query spec and returns the page plus the
// exact total count, thumbnails normalized.
func (s *Service) ListVideos(ctx context.Context, spec QuerySpec) ([]models.Video, int64, error) {
	videos, total, err := s.repo.FetchVideoRows(ctx, spec)
	if err != nil {
		return nil, 0, err
	}
	for i := range videos {
		s.normalizeThumbnail(&videos[i])
	}
	return videos, total, nil
}

// CreateVideo inserts a new record after enforcing the storage reference
// invariants. Videos start in draft unless the admin says otherwise.
func (s *Service) CreateVideo(ctx context.Context, row VideoWrite) (*models.Video, error) {
	if row.Status == "" {
		row.Status = models.StatusDraft
	}
	if err := validateStorageRefs(row.VideoURL, row.ThumbnailURL, row.IsPremium); err != nil {
		return nil, err
	}

	created, err := s.repo.InsertVideoRow(ctx, row)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"video_id": created.ID,
		"title":    created.Title,
		"status":   created.Status,
	}).Info("Video created")

	s.normalizeThumbnail(created)
	return created, nil
}

// UpdateVideo replaces all mutable fields of an existing record.
func (s *Service) UpdateVideo(ctx context.Context, rawID string, row VideoWrite) (*models.Video, error) {
	id, err := ParseVideoID(rawID)
	if err != nil {
		return nil, err
	}
	if err := validateStorageRefs(row.VideoURL, row.ThumbnailURL, row.IsPremium); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":         row.Title,
		"description":   row.Description,
		"category":      row.Category,
		"level":         row.Level,
		"duration":      row.Duration,
		"video_url":     row.VideoURL,
		"thumbnail_url": row.ThumbnailURL,
		"is_premium":    row.IsPremium,
		"status":        row.Status,
	}

	updated, err := s.repo.UpdateVideoRow(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.normalizeThumbnail(updated)
	return updated, nil
}

// PartialUpdateVideo applies only the provided fields. When the patch ends
// up touching the premium flag or the asset reference, the bucket/premium
// invariant is re-checked against the stored row.
func (s *Service) PartialUpdateVideo(ctx context.Context, rawID string, updates map[string]interface{}) (*models.Video, error) {
	id, err := ParseVideoID(rawID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return s.GetVideo(ctx, rawID)
	}

	_, touchesURL := updates["video_url"]
	_, touchesPremium := updates["is_premium"]
	if touchesURL || touchesPremium {
		current, err := s.repo.FetchVideoRow(ctx, id)
		if err != nil {
			return nil, err
		}
		videoURL := current.VideoURL
		isPremium := current.IsPremium
		if v, ok := updates["video_url"].(string); ok {
			videoURL = v
		}
		if v, ok := updates["is_premium"].(bool); ok {
			isPremium = v
		}
		if !storage.ValidVideoRef(videoURL) {
			return nil, apperrors.NewValidation("video_url", "videos-free/filename.mp4 or videos-premium/filename.mp4")
		}
		if _, _, err := storage.SplitVideoRef(videoURL, isPremium); err != nil {
			return nil, apperrors.NewValidation("video_url", "bucket prefix must match is_premium")
		}
	}
	if v, ok := updates["thumbnail_url"].(string); ok && !storage.ValidThumbnailRef(v) {
		return nil, apperrors.NewValidation("thumbnail_url", "thumbnails/filename.(jpg|png|webp)")
	}

	updated, err := s.repo.UpdateVideoRow(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.normalizeThumbnail(updated)
	return updated, nil
}

// DeleteVideo removes a record. Returns apperrors.ErrNotFound when nothing
// was deleted. Associated storage objects are left in place.
func (s *Service) DeleteVideo(ctx context.Context, rawID string) error {
	id, err := ParseVideoID(rawID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteVideoRow(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}

	s.logger.WithField("video_id", id).Info("Video deleted")
	return nil
}

func (s *Service) normalizeThumbnail(video *models.Video) {
	if video.ThumbnailURL == "" {
		return
	}
	video.ThumbnailURL = s.gateway.PublicURL(storage.BucketThumbnails, storage.ThumbnailPath(video.ThumbnailURL))
}

func validateStorageRefs(videoURL, thumbnailURL string, isPremium bool) error {
	if !storage.ValidVideoRef(videoURL) {
		return apperrors.NewValidation("video_url", "videos-free/filename.mp4 or videos-premium/filename.mp4")
	}
	if _, _, err := storage.SplitVideoRef(videoURL, isPremium); err != nil {
		return apperrors.NewValidation("video_url", "bucket prefix must match is_premium")
	}
	if !storage.ValidThumbnailRef(thumbnailURL) {
		return apperrors.NewValidation("thumbnail_url", "thumbnails/filename.(jpg|png|webp)")
	}
	return nil
}
