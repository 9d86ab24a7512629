package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/middleware"
	"fitvod/api-gateway/utils"
)

// GetPlayback runs the whole playback pipeline for one video: lookup, access
// check, URL resolution. The access decision is made here with the business
// rules, not delegated to the store's row visibility; the premium check
// never reveals anything about unpublished content because the status check
// runs first inside CheckAccess.
//
// A denial is a valid business outcome, returned as 403 with the verdict's
// reason so clients can render distinct messaging per reason.
func (h *ApplicationHandler) GetPlayback(c *fiber.Ctx) error {
	role := middleware.ViewerRole(c)

	video, err := h.Catalog.GetVideo(c.Context(), c.Params("id"))
	if err != nil {
		return utils.RespondWithAppError(c, err)
	}

	verdict := access.CheckAccess(video, role)
	if !verdict.HasAccess {
		code := apperrors.CodeAccessDenied
		if verdict.Reason == access.ReasonPremiumRequired {
			code = apperrors.CodePremiumRequired
		}
		details := map[string]string{"reason": string(verdict.Reason)}
		if verdict.RequiredRole != access.RoleAnonymous {
			details["required_role"] = string(verdict.RequiredRole)
		}
		return utils.RespondWithError(c, fiber.StatusForbidden, code, "You do not have access to this video", details)
	}

	playable, err := h.Resolver.ResolvePlayableURL(c.Context(), video, verdict)
	if err != nil {
		return utils.RespondWithAppError(c, err)
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, playable)
}
