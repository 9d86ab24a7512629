package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/utils"
)

const viewerRoleKey = "viewer_role"

// supabaseClaims is the subset of the Supabase access token we care about.
// The viewer role lives in user_metadata, set by the auth admin API.
type supabaseClaims struct {
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// ViewerRole reads the role resolved by ResolveViewer for the current
// request. Anonymous when the middleware did not run or no token was sent.
func ViewerRole(c *fiber.Ctx) access.Role {
	if role, ok := c.Locals(viewerRoleKey).(access.Role); ok {
		return role
	}
	return access.RoleAnonymous
}

// ResolveViewer derives the viewer role from the Authorization header and
// stores it in request locals. Requests without a token proceed as
// anonymous; requests with an invalid or expired token are rejected rather
// than silently downgraded.
func ResolveViewer(jwtSecret string, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			c.Locals(viewerRoleKey, access.RoleAnonymous)
			return c.Next()
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, apperrors.CodeUnauthorized, "Authorization header must use the Bearer scheme", nil)
		}

		claims := &supabaseClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			log.WithField("error", fmt.Sprintf("%v", err)).Warn("Rejected invalid access token")
			return utils.RespondWithError(c, fiber.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid or expired access token", nil)
		}

		c.Locals(viewerRoleKey, roleFromClaims(claims))
		return c.Next()
	}
}

// roleFromClaims maps token metadata onto a role. Authenticated users
// without an explicit (or with an unrecognized) role default to free.
func roleFromClaims(claims *supabaseClaims) access.Role {
	raw, _ := claims.UserMetadata["role"].(string)
	if role, ok := access.ParseRole(raw); ok && role != access.RoleAnonymous {
		return role
	}
	return access.RoleFree
}

// RequireAdmin gates admin-only routes: 401 for anonymous viewers, 403 for
// authenticated viewers without the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := ViewerRole(c)
		if role == access.RoleAnonymous {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, apperrors.CodeUnauthorized, "Authentication required", nil)
		}
		if role != access.RoleAdmin {
			return utils.RespondWithError(c, fiber.StatusForbidden, apperrors.CodeForbidden, "Admin role required", nil)
		}
		return c.Next()
	}
}
