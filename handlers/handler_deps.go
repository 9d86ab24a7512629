package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/catalog"
	"fitvod/api-gateway/internal/playback"
	"fitvod/api-gateway/models"
)

// CatalogService defines the operations handlers expect from the video
// catalog. Decouples handlers from the concrete service for testing.
type CatalogService interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	GetVideoForViewer(ctx context.Context, id string, viewer access.Role) (*models.Video, error)
	ListVideos(ctx context.Context, spec catalog.QuerySpec) ([]models.Video, int64, error)
	CreateVideo(ctx context.Context, row catalog.VideoWrite) (*models.Video, error)
	UpdateVideo(ctx context.Context, id string, row catalog.VideoWrite) (*models.Video, error)
	PartialUpdateVideo(ctx context.Context, id string, updates map[string]interface{}) (*models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
}

// URLResolver resolves playback URLs after an access check.
type URLResolver interface {
	ResolvePlayableURL(ctx context.Context, video *models.Video, verdict access.Verdict) (models.PlayableURL, error)
}

// HealthChecker pings the backing store.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Catalog  CatalogService
	Resolver URLResolver
	Health   HealthChecker
	Logger   *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(cat CatalogService, resolver URLResolver, health HealthChecker, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Catalog:  cat,
		Resolver: resolver,
		Health:   health,
		Logger:   logger,
	}
}

var _ URLResolver = (*playback.Resolver)(nil)
var _ CatalogService = (*catalog.Service)(nil)
