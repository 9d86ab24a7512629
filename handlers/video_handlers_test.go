package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/internal/catalog"
	"fitvod/api-gateway/middleware"
	"fitvod/api-gateway/models"
)

type stubCatalog struct {
	video    *models.Video
	videos   []models.Video
	err      error
	lastSpec catalog.QuerySpec
}

func (s *stubCatalog) GetVideo(_ context.Context, id string) (*models.Video, error) {
	if _, err := catalog.ParseVideoID(id); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.video, nil
}

func (s *stubCatalog) GetVideoForViewer(ctx context.Context, id string, viewer access.Role) (*models.Video, error) {
	v, err := s.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer != access.RoleAdmin && v.Status != models.StatusPublished {
		return nil, apperrors.ErrNotFound
	}
	return v, nil
}

func (s *stubCatalog) ListVideos(_ context.Context, spec catalog.QuerySpec) ([]models.Video, int64, error) {
	s.lastSpec = spec
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.videos, int64(len(s.videos)), nil
}

func (s *stubCatalog) CreateVideo(_ context.Context, row catalog.VideoWrite) (*models.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := *s.video
	v.Title = row.Title
	return &v, nil
}

func (s *stubCatalog) UpdateVideo(_ context.Context, id string, row catalog.VideoWrite) (*models.Video, error) {
	return s.video, s.err
}

func (s *stubCatalog) PartialUpdateVideo(_ context.Context, id string, updates map[string]interface{}) (*models.Video, error) {
	return s.video, s.err
}

func (s *stubCatalog) DeleteVideo(_ context.Context, id string) error {
	return s.err
}

type stubResolver struct {
	url models.PlayableURL
	err error
}

func (s *stubResolver) ResolvePlayableURL(_ context.Context, _ *models.Video, verdict access.Verdict) (models.PlayableURL, error) {
	if !verdict.HasAccess {
		return models.PlayableURL{}, apperrors.ErrAccessDenied
	}
	return s.url, s.err
}

type stubHealth struct{ err error }

func (s stubHealth) Ping(context.Context) error { return s.err }

func testVideo(premium bool, status models.VideoStatus) *models.Video {
	ref := "videos-free/flow.mp4"
	if premium {
		ref = "videos-premium/flow.mp4"
	}
	return &models.Video{
		ID:           uuid.New(),
		Title:        "Flow",
		Category:     models.CategoryYoga,
		Level:        models.LevelBeginner,
		Duration:     1200,
		VideoURL:     ref,
		ThumbnailURL: "https://cdn.test/object/public/thumbnails/flow.jpg",
		IsPremium:    premium,
		Status:       status,
	}
}

// newTestApp builds a fiber app with the viewer role pinned, skipping JWT
// verification; the auth middleware has its own tests.
func newTestApp(h *ApplicationHandler, role access.Role) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("viewer_role", role)
		return c.Next()
	})
	app.Get("/health", h.HealthCheck)
	api := app.Group("/api/v1")
	api.Get("/videos", h.ListVideos)
	api.Get("/videos/:id", h.GetVideo)
	api.Get("/videos/:id/playback", h.GetPlayback)
	api.Post("/videos", middleware.RequireAdmin(), h.CreateVideo)
	api.Put("/videos/:id", middleware.RequireAdmin(), h.UpdateVideo)
	api.Patch("/videos/:id", middleware.RequireAdmin(), h.PatchVideo)
	api.Delete("/videos/:id", middleware.RequireAdmin(), h.DeleteVideo)
	return app
}

func newTestHandler(cat CatalogService, res URLResolver, health HealthChecker) *ApplicationHandler {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewApplicationHandler(cat, res, health, l)
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body []byte) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body struct {
		Error map[string]interface{} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Error, "expected the uniform error envelope")
	return body.Error
}

func TestListVideosEnvelope(t *testing.T) {
	cat := &stubCatalog{videos: []models.Video{*testVideo(false, models.StatusPublished)}}
	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleAnonymous)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos?category=yoga&limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []models.Video `json:"data"`
		Meta ListMeta       `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, int64(1), body.Meta.Total)
	assert.Equal(t, 10, body.Meta.Limit)
	assert.Equal(t, 1, body.Meta.Count)

	// Anonymous listings are pinned to published.
	require.NotNil(t, cat.lastSpec.Status)
	assert.Equal(t, models.StatusPublished, *cat.lastSpec.Status)
}

func TestListVideosRejectsBadLimit(t *testing.T) {
	app := newTestApp(newTestHandler(&stubCatalog{}, &stubResolver{}, stubHealth{}), access.RoleFree)

	for _, q := range []string{"limit=0", "limit=101", "limit=abc", "offset=-1", "category=pilates"} {
		resp := doRequest(t, app, http.MethodGet, "/api/v1/videos?"+q, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", q)
		errBody := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	}
}

func TestListVideosStatusFilterForbiddenForNonAdmin(t *testing.T) {
	app := newTestApp(newTestHandler(&stubCatalog{}, &stubResolver{}, stubHealth{}), access.RolePremium)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos?status=draft", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetVideoBadIDIs400(t *testing.T) {
	app := newTestApp(newTestHandler(&stubCatalog{}, &stubResolver{}, stubHealth{}), access.RoleFree)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, resp)["code"])
}

func TestGetVideoNotFoundIs404(t *testing.T) {
	cat := &stubCatalog{err: apperrors.ErrNotFound}
	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleFree)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp)["code"])
}

func TestGetVideoUnpublishedHiddenFromNonAdmin(t *testing.T) {
	cat := &stubCatalog{video: testVideo(true, models.StatusDraft)}

	for _, role := range []access.Role{access.RoleAnonymous, access.RoleFree, access.RolePremium} {
		app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), role)
		resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, "role %q", role)

		// The 404 body must not reveal the record exists, let alone its tier.
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "videos-premium")
		assert.NotContains(t, string(raw), "draft")
	}

	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleAdmin)
	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admins preview unpublished content")
}

func TestPlaybackDeniedForFreeViewer(t *testing.T) {
	cat := &stubCatalog{video: testVideo(true, models.StatusPublished)}
	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleFree)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/"+uuid.NewString()+"/playback", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	errBody := decodeError(t, resp)
	assert.Equal(t, "PREMIUM_REQUIRED", errBody["code"])
	details, _ := errBody["details"].(map[string]interface{})
	require.NotNil(t, details)
	assert.Equal(t, "PREMIUM_REQUIRED", details["reason"])
	assert.Equal(t, "premium", details["required_role"])
}

func TestPlaybackDraftDeniedWithoutTierLeak(t *testing.T) {
	cat := &stubCatalog{video: testVideo(true, models.StatusDraft)}
	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RolePremium)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/"+uuid.NewString()+"/playback", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	errBody := decodeError(t, resp)
	assert.Equal(t, "ACCESS_DENIED", errBody["code"])
	details, _ := errBody["details"].(map[string]interface{})
	require.NotNil(t, details)
	// The denial must not mention the premium tier at all.
	assert.Equal(t, "NOT_PUBLISHED", details["reason"])
	assert.NotContains(t, details, "required_role")
}

func TestPlaybackSuccessForPremiumViewer(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	cat := &stubCatalog{video: testVideo(true, models.StatusPublished)}
	res := &stubResolver{url: models.PlayableURL{URL: "https://cdn.test/sign/tok", ExpiresAt: &expires}}
	app := newTestApp(newTestHandler(cat, res, stubHealth{}), access.RolePremium)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/"+uuid.NewString()+"/playback", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data models.PlayableURL `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "https://cdn.test/sign/tok", body.Data.URL)
	require.NotNil(t, body.Data.ExpiresAt)
}

func TestPlaybackAdminSeesDraft(t *testing.T) {
	cat := &stubCatalog{video: testVideo(false, models.StatusDraft)}
	res := &stubResolver{url: models.PlayableURL{URL: "https://cdn.test/public/flow.mp4"}}
	app := newTestApp(newTestHandler(cat, res, stubHealth{}), access.RoleAdmin)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/videos/"+uuid.NewString()+"/playback", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateVideoRequiresAdmin(t *testing.T) {
	cat := &stubCatalog{video: testVideo(false, models.StatusDraft)}

	payload, _ := json.Marshal(map[string]interface{}{
		"title":         "New",
		"category":      "yoga",
		"level":         "beginner",
		"duration":      600,
		"video_url":     "videos-free/new.mp4",
		"thumbnail_url": "thumbnails/new.jpg",
	})

	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleAnonymous)
	resp := doRequest(t, app, http.MethodPost, "/api/v1/videos", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	app = newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RolePremium)
	resp = doRequest(t, app, http.MethodPost, "/api/v1/videos", payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	app = newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleAdmin)
	resp = doRequest(t, app, http.MethodPost, "/api/v1/videos", payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateVideoValidation(t *testing.T) {
	cat := &stubCatalog{video: testVideo(false, models.StatusDraft)}
	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleAdmin)

	payload, _ := json.Marshal(map[string]interface{}{
		"title":         "New",
		"category":      "swimming", // not in the closed set
		"level":         "beginner",
		"duration":      9000, // over the 7200s bound
		"video_url":     "videos-free/new.mp4",
		"thumbnail_url": "thumbnails/new.jpg",
	})
	resp := doRequest(t, app, http.MethodPost, "/api/v1/videos", payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errBody := decodeError(t, resp)
	details, _ := errBody["details"].(map[string]interface{})
	require.NotNil(t, details)
	assert.Contains(t, details, "Category")
	assert.Contains(t, details, "Duration")
}

func TestDeleteVideoNoContent(t *testing.T) {
	cat := &stubCatalog{}
	app := newTestApp(newTestHandler(cat, &stubResolver{}, stubHealth{}), access.RoleAdmin)

	resp := doRequest(t, app, http.MethodDelete, "/api/v1/videos/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(newTestHandler(&stubCatalog{}, &stubResolver{}, stubHealth{}), access.RoleAnonymous)
	resp := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	app = newTestApp(newTestHandler(&stubCatalog{}, &stubResolver{}, stubHealth{err: errors.New("unreachable")}), access.RoleAnonymous)
	resp = doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
