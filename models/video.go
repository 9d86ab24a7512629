package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoCategory is the closed set of content categories.
type VideoCategory string

const (
	CategoryYoga         VideoCategory = "yoga"
	CategoryMobility     VideoCategory = "mobility"
	CategoryCalisthenics VideoCategory = "calisthenics"
)

// VideoLevel is the closed set of difficulty levels.
type VideoLevel string

const (
	LevelBeginner     VideoLevel = "beginner"
	LevelIntermediate VideoLevel = "intermediate"
	LevelAdvanced     VideoLevel = "advanced"
)

// VideoStatus is the lifecycle stage of a video record.
// Transitions draft -> published -> archived are admin-only; only published
// videos are visible to non-admin viewers.
type VideoStatus string

const (
	StatusDraft     VideoStatus = "draft"
	StatusPublished VideoStatus = "published"
	StatusArchived  VideoStatus = "archived"
)

// Video represents the structure of a video in the database.
type Video struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Description  *string       `json:"description,omitempty"` // Nullable TEXT
	Category     VideoCategory `json:"category"`
	Level        VideoLevel    `json:"level"`
	Duration     int           `json:"duration"` // Seconds, 1..7200
	VideoURL     string        `json:"video_url"`
	ThumbnailURL string        `json:"thumbnail_url"`
	IsPremium    bool          `json:"is_premium"`
	Status       VideoStatus   `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsValidCategory reports whether s is a member of the category enum.
func IsValidCategory(s string) bool {
	switch VideoCategory(s) {
	case CategoryYoga, CategoryMobility, CategoryCalisthenics:
		return true
	}
	return false
}

// IsValidLevel reports whether s is a member of the level enum.
func IsValidLevel(s string) bool {
	switch VideoLevel(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a member of the status enum.
func IsValidStatus(s string) bool {
	switch VideoStatus(s) {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}
