package access

import "fitvod/api-gateway/models"

// Reason explains a denial. Empty when access is granted.
type Reason string

const (
	ReasonPremiumRequired Reason = "PREMIUM_REQUIRED"
	ReasonNotPublished    Reason = "NOT_PUBLISHED"
	ReasonArchived        Reason = "ARCHIVED"
)

// Verdict is the result of an access check. Derived value, never persisted.
type Verdict struct {
	HasAccess    bool   `json:"has_access"`
	Reason       Reason `json:"reason,omitempty"`
	RequiredRole Role   `json:"required_role,omitempty"`
}

// CheckAccess decides whether a viewer with the given role may play the
// video. The checks are ordered and first match wins; the order is part of
// the contract:
//
//  1. Admins bypass status and tier checks entirely, including draft and
//     archived content (content-management previews).
//  2. Non-admins only see published videos. This runs before the premium
//     check so an unauthorized viewer never learns whether unpublished
//     content is premium.
//  3. Free content is open to everyone, including anonymous viewers.
//  4. Premium content is open to premium viewers.
//  5. Everyone else is denied with PREMIUM_REQUIRED.
//
// The function is total and side-effect-free.
func CheckAccess(video *models.Video, role Role) Verdict {
	if role == RoleAdmin {
		return Verdict{HasAccess: true}
	}

	if video.Status != models.StatusPublished {
		reason := ReasonNotPublished
		if video.Status == models.StatusArchived {
			reason = ReasonArchived
		}
		return Verdict{HasAccess: false, Reason: reason}
	}

	if !video.IsPremium {
		return Verdict{HasAccess: true}
	}

	if role == RolePremium {
		return Verdict{HasAccess: true}
	}

	return Verdict{
		HasAccess:    false,
		Reason:       ReasonPremiumRequired,
		RequiredRole: RolePremium,
	}
}
