package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, exp, err := tm.GenerateToken("admin", domain.SubjectTypeAdmin)
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, domain.SubjectTypeAdmin, claims.SubjectType)
}

func TestTokenFromAnotherSecretIsRejected(t *testing.T) {
	token, _, err := NewTokenManager("one", 5).GenerateToken("admin", domain.SubjectTypeAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("key", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "key"))
	assert.Error(t, ComparePassword(hash, "other"))
}

func newProtectedApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/secret", NewAuthMiddleware(tm).Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.SubjectID)
	})
	return app
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := newProtectedApp(tm)
	admin, _, _ := tm.GenerateToken("admin", domain.SubjectTypeAdmin)
	other, _, _ := tm.GenerateToken("someone", domain.SubjectType("USER"))

	cases := []struct {
		header string
		status int
	}{
		{"", fiber.StatusUnauthorized},
		{"Token " + admin, fiber.StatusUnauthorized},
		{"Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"Bearer " + other, fiber.StatusForbidden},
		{"Bearer " + admin, fiber.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/secret", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.header)
	}
}
