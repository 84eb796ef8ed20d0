package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"coinquest/models"
	"coinquest/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami(c *fiber.Ctx) error {
	who, ok := CurrentIdentity(c)
	if !ok {
		return c.SendStatus(fiber.StatusTeapot)
	}
	return c.SendString(strconv.FormatUint(uint64(who.UserID), 10) + ":" + who.Username)
}

func newIssuer(t *testing.T) (*services.TokenIssuer, string) {
	t.Helper()
	issuer := services.NewTokenIssuer("test-secret", time.Hour)
	token, _, err := issuer.Issue(&models.User{ID: 12, Username: "mira"})
	require.NoError(t, err)
	return issuer, token
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestUserContextMiddleware(t *testing.T) {
	issuer, token := newIssuer(t)
	app := fiber.New()
	app.Get("/me", UserContextMiddleware(issuer), whoami)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"no bearer prefix", token, fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"valid", "Bearer " + token, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == fiber.StatusOK {
				assert.Equal(t, "12:mira", body(t, resp))
			}
		})
	}
}

func TestSSEAuthMiddleware(t *testing.T) {
	issuer, token := newIssuer(t)
	app := fiber.New()
	app.Get("/stream", SSEAuthMiddleware(issuer), whoami)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/stream?token=garbage", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/stream?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "12:mira", body(t, resp))
}

func TestServiceTokenMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }

	app := fiber.New()
	app.Get("/internal", ServiceTokenMiddleware("ops-token"), ok)

	for header, status := range map[string]int{
		"":                 fiber.StatusUnauthorized,
		"Bearer wrong":     fiber.StatusUnauthorized,
		"Bearer ops-token": fiber.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/internal", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, "header %q", header)
	}

	disabled := fiber.New()
	disabled.Get("/internal", ServiceTokenMiddleware(""), ok)
	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp, err := disabled.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
