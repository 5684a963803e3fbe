package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pitwall/config"
	"pitwall/internal/models"
	"pitwall/internal/types"
	"pitwall/pkg/logger"

	authController "pitwall/internal/controllers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	authController.AuthControllerInterface
	user *models.User
}

func (f fakeAuth) Authenticate(_ context.Context, rawToken string) (*models.User, *types.TokenInfo, error) {
	if rawToken != "valid" {
		return nil, nil, types.ErrUnauthenticated
	}
	return f.user, &types.TokenInfo{TokenID: "jti-1", Valid: true}, nil
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		expected    string
		expectError bool
	}{
		{name: "Bearer token", header: "Bearer abc", expected: "abc"},
		{name: "Case insensitive scheme", header: "bearer abc", expected: "abc"},
		{name: "Missing header", header: "", expectError: true},
		{name: "Wrong scheme", header: "Basic abc", expectError: true},
		{name: "No token", header: "Bearer ", expectError: true},
		{name: "No separator", header: "Bearerabc", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := BearerToken(tt.header)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func newAuthApp(user *models.User) *fiber.App {
	m := New(config.Config{}, fakeAuth{user: user})

	app := fiber.New()
	app.Use(m.TraceID())
	handler := func(c *fiber.Ctx) error {
		user := GetUser(c)
		info := GetTokenInfo(c)
		if user == nil || info == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(user.Username + ":" + info.TokenID)
	}
	app.Get("/required", m.RequireAuth(), handler)
	app.Get("/optional", m.OptionalAuth(), handler)
	app.Get("/trace", func(c *fiber.Ctx) error {
		return c.SendString(GetTraceID(c) + "|" + logger.TraceIDFromContext(c.UserContext()))
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, authorization string, headers ...string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRequireAuth(t *testing.T) {
	user := &models.User{BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()}, Username: "alice"}
	app := newAuthApp(user)

	resp, _ := request(t, app, "/required", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = request(t, app, "/required", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := request(t, app, "/required", "Bearer valid")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice:jti-1", body)
}

func TestOptionalAuth(t *testing.T) {
	user := &models.User{BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()}, Username: "alice"}
	app := newAuthApp(user)

	_, body := request(t, app, "/optional", "")
	assert.Equal(t, "anonymous", body)

	_, body = request(t, app, "/optional", "Bearer forged")
	assert.Equal(t, "anonymous", body)

	_, body = request(t, app, "/optional", "Bearer valid")
	assert.Equal(t, "alice:jti-1", body)
}

func TestTraceID(t *testing.T) {
	app := newAuthApp(nil)

	resp, body := request(t, app, "/trace", "", TraceIDHeader, "trace-abc")
	assert.Equal(t, "trace-abc", resp.Header.Get(TraceIDHeader))
	assert.Equal(t, "trace-abc|trace-abc", body)

	resp, body = request(t, app, "/trace", "")
	generated := resp.Header.Get(TraceIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated+"|"+generated, body)
}

func TestTraceID_RejectsUnsafeHeader(t *testing.T) {
	app := newAuthApp(nil)

	for _, supplied := range []string{"bad id with spaces", strings.Repeat("a", 65), "x\"y"} {
		resp, _ := request(t, app, "/trace", "", TraceIDHeader, supplied)
		generated := resp.Header.Get(TraceIDHeader)
		assert.NotEqual(t, supplied, generated)
		_, err := uuid.Parse(generated)
		assert.NoError(t, err, "replacement should be a fresh uuid")
	}
}

func TestValidTraceID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"0af7651916cd43dd8448eb211c80319c", true},
		{"trace-abc_1.2", true},
		{"new\nline", false},
		{strings.Repeat("f", 64), true},
		{strings.Repeat("f", 65), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validTraceID(tt.id), tt.id)
	}
}
