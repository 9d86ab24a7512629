package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitvod/api-gateway/internal/access"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, secret, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(expiresIn).Unix(),
		"user_metadata": map[string]interface{}{
			"role": role,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthApp() *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New()
	app.Use(ResolveViewer(testSecret, log))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(string(ViewerRole(c)))
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func whoami(t *testing.T, app *fiber.App, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestResolveViewerNoTokenIsAnonymous(t *testing.T) {
	status, role := whoami(t, newAuthApp(), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(access.RoleAnonymous), role)
}

func TestResolveViewerValidToken(t *testing.T) {
	app := newAuthApp()
	for _, want := range []string{"free", "premium", "admin"} {
		token := signToken(t, testSecret, want, time.Hour)
		status, role := whoami(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, want, role)
	}
}

func TestResolveViewerUnknownRoleDefaultsToFree(t *testing.T) {
	token := signToken(t, testSecret, "superuser", time.Hour)
	status, role := whoami(t, newAuthApp(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(access.RoleFree), role)
}

func TestResolveViewerRejectsBadScheme(t *testing.T) {
	status, _ := whoami(t, newAuthApp(), "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestResolveViewerRejectsExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, "premium", -time.Minute)
	status, _ := whoami(t, newAuthApp(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestResolveViewerRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "another-secret", "admin", time.Hour)
	status, _ := whoami(t, newAuthApp(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestResolveViewerRejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{
			"role": "admin",
		},
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	status, _ := whoami(t, newAuthApp(), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequireAdmin(t *testing.T) {
	app := newAuthApp()

	call := func(authorization string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusForbidden, call("Bearer "+signToken(t, testSecret, "premium", time.Hour)))
	assert.Equal(t, http.StatusOK, call("Bearer "+signToken(t, testSecret, "admin", time.Hour)))
}
