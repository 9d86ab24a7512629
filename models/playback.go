package models

import "time"

// PlayableURL is a resolved playback location for a video asset.
// Free-tier assets carry no expiry and may be cached indefinitely. Premium
// assets are signed and expire; the old URL is not reusable after expiry and
// must be regenerated, never refreshed in place.
type PlayableURL struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the URL has passed its expiry at the given instant.
// Public URLs never expire.
func (p PlayableURL) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
