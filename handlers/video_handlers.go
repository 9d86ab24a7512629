package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/internal/catalog"
	"fitvod/api-gateway/middleware"
	"fitvod/api-gateway/models"
	"fitvod/api-gateway/utils"
)

var validate = validator.New()

// ListMeta is the pagination metadata returned with video listings.
type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Count  int   `json:"count"`
}

// ListVideos godoc
// @Summary List videos
// @Description Retrieves a paginated list of videos with optional filtering and sorting. Non-admin callers only see published content.
// @Tags videos
// @Produce json
// @Success 200 {object} map[string]interface{} "data + meta"
// @Failure 400 {object} utils.ErrorBody "Invalid filter parameter"
// @Router /api/v1/videos [get]
func (h *ApplicationHandler) ListVideos(c *fiber.Ctx) error {
	role := middleware.ViewerRole(c)

	raw := catalog.RawListParams{
		Category:  c.Query("category"),
		Level:     c.Query("level"),
		IsPremium: c.Query("is_premium"),
		Status:    c.Query("status"),
		Limit:     c.Query("limit"),
		Offset:    c.Query("offset"),
		Sort:      c.Query("sort"),
		Order:     c.Query("order"),
	}

	spec, err := catalog.BuildQuery(raw, role)
	if err != nil {
		return utils.RespondWithAppError(c, err)
	}

	videos, total, err := h.Catalog.ListVideos(c.Context(), spec)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Video listing failed")
		return utils.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": videos,
		"meta": ListMeta{
			Total:  total,
			Limit:  spec.Limit,
			Offset: spec.Offset,
			Count:  len(videos),
		},
	})
}

// GetVideo godoc
// @Summary Get a video by ID
// @Description Retrieves a single video. Returns 404 when the video is absent or invisible to the caller.
// @Tags videos
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorBody "Malformed video ID"
// @Failure 404 {object} utils.ErrorBody "Not found"
// @Router /api/v1/videos/{id} [get]
func (h *ApplicationHandler) GetVideo(c *fiber.Ctx) error {
	video, err := h.Catalog.GetVideoForViewer(c.Context(), c.Params("id"), middleware.ViewerRole(c))
	if err != nil {
		return utils.RespondWithAppError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, video)
}

// CreateVideoRequest defines the admin payload for creating a video.
type CreateVideoRequest struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Category     string  `json:"category" validate:"required,oneof=yoga mobility calisthenics"`
	Level        string  `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Duration     int     `json:"duration" validate:"required,min=1,max=7200"`
	VideoURL     string  `json:"video_url" validate:"required"`
	ThumbnailURL string  `json:"thumbnail_url" validate:"required"`
	IsPremium    bool    `json:"is_premium"`
	Status       string  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// CreateVideo handles the admin-only write path. New records default to
// draft; storage references are checked against the premium flag before the
// insert reaches the database.
func (h *ApplicationHandler) CreateVideo(c *fiber.Ctx) error {
	payload := new(CreateVideoRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, apperrors.CodeValidation, fmt.Sprintf("Invalid request body: %v", err), nil)
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Validation failed", utils.FormatValidationErrors(err))
	}

	created, err := h.Catalog.CreateVideo(c.Context(), catalog.VideoWrite{
		Title:        payload.Title,
		Description:  payload.Description,
		Category:     models.VideoCategory(payload.Category),
		Level:        models.VideoLevel(payload.Level),
		Duration:     payload.Duration,
		VideoURL:     payload.VideoURL,
		ThumbnailURL: payload.ThumbnailURL,
		IsPremium:    payload.IsPremium,
		Status:       models.VideoStatus(payload.Status),
	})
	if err != nil {
		return utils.RespondWithAppError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, created)
}

// UpdateVideo replaces all mutable fields of a video (admin only).
func (h *ApplicationHandler) UpdateVideo(c *fiber.Ctx) error {
	payload := new(CreateVideoRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, apperrors.CodeValidation, fmt.Sprintf("Invalid request body: %v", err), nil)
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Validation failed", utils.FormatValidationErrors(err))
	}

	status := models.VideoStatus(payload.Status)
	if status == "" {
		status = models.StatusDraft
	}
	updated, err := h.Catalog.UpdateVideo(c.Context(), c.Params("id"), catalog.VideoWrite{
		Title:        payload.Title,
		Description:  payload.Description,
		Category:     models.VideoCategory(payload.Category),
		Level:        models.VideoLevel(payload.Level),
		Duration:     payload.Duration,
		VideoURL:     payload.VideoURL,
		ThumbnailURL: payload.ThumbnailURL,
		IsPremium:    payload.IsPremium,
		Status:       status,
	})
	if err != nil {
		return utils.RespondWithAppError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, updated)
}

// PatchVideoRequest carries the optional fields of a partial update. We use
// pointers to distinguish a field not provided from a field provided with an
// explicit zero value.
type PatchVideoRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Category     *string `json:"category" validate:"omitempty,oneof=yoga mobility calisthenics"`
	Level        *string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Duration     *int    `json:"duration" validate:"omitempty,min=1,max=7200"`
	VideoURL     *string `json:"video_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	IsPremium    *bool   `json:"is_premium"`
	Status       *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// PatchVideo partially updates a video (admin only).
func (h *ApplicationHandler) PatchVideo(c *fiber.Ctx) error {
	payload := new(PatchVideoRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, apperrors.CodeValidation, fmt.Sprintf("Invalid request body: %v", err), nil)
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Validation failed", utils.FormatValidationErrors(err))
	}

	updates := map[string]interface{}{}
	if payload.Title != nil {
		updates["title"] = *payload.Title
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Category != nil {
		updates["category"] = *payload.Category
	}
	if payload.Level != nil {
		updates["level"] = *payload.Level
	}
	if payload.Duration != nil {
		updates["duration"] = *payload.Duration
	}
	if payload.VideoURL != nil {
		updates["video_url"] = *payload.VideoURL
	}
	if payload.ThumbnailURL != nil {
		updates["thumbnail_url"] = *payload.ThumbnailURL
	}
	if payload.IsPremium != nil {
		updates["is_premium"] = *payload.IsPremium
	}
	if payload.Status != nil {
		updates["status"] = *payload.Status
	}

	updated, err := h.Catalog.PartialUpdateVideo(c.Context(), c.Params("id"), updates)
	if err != nil {
		return utils.RespondWithAppError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, updated)
}

// DeleteVideo removes a video record (admin only). Storage objects are left
// in place.
func (h *ApplicationHandler) DeleteVideo(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteVideo(c.Context(), c.Params("id")); err != nil {
		return utils.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
