package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-synth/internal/domain"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, meta, err := tm.GenerateToken("discord-bot", domain.SubjectTypeBot, ScopeGenerate)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, meta.ExpiresAt.Sub(meta.IssuedAt))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "discord-bot", claims.SubjectID)
	assert.True(t, claims.HasScope(ScopeGenerate))

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken("bot", domain.SubjectTypeBot)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestAPIKeyHash(t *testing.T) {
	hash, err := HashAPIKey("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, CompareAPIKey(hash, "s3cret"))
	assert.Error(t, CompareAPIKey(hash, "wrong"))
}

func newApp(m *AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/", m.Handle, RequireScope(ScopeGenerate), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.ClientID)
	})
	return app
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	scoped, _, err := tm.GenerateToken("discord-bot", domain.SubjectTypeBot, ScopeGenerate)
	require.NoError(t, err)
	unscoped, _, err := tm.GenerateToken("discord-bot", domain.SubjectTypeBot)
	require.NoError(t, err)

	cases := []struct {
		name    string
		enabled bool
		header  string
		status  int
	}{
		{"disabled", false, "", http.StatusOK},
		{"missing header", true, "", http.StatusUnauthorized},
		{"bad scheme", true, "Basic abc", http.StatusUnauthorized},
		{"garbage token", true, "Bearer abc", http.StatusUnauthorized},
		{"missing scope", true, "Bearer " + unscoped, http.StatusForbidden},
		{"valid", true, "Bearer " + scoped, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(NewAuthMiddleware(tm, tc.enabled))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
