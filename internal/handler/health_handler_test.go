package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-results-api/internal/config"
	"github.com/noah-isme/gema-results-api/internal/handler"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{AppName: "results", AppEnv: "test"}

	app := fiber.New()
	app.Get("/ok", handler.HealthCheck(cfg, pingerFunc(func(context.Context) error { return nil })))
	app.Get("/down", handler.HealthCheck(cfg, pingerFunc(func(context.Context) error { return errors.New("refused") })))
	app.Get("/bare", handler.HealthCheck(cfg, nil))

	resp, payload := doJSON(t, app, http.MethodGet, "/ok", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(payload.Data, &health))
	require.Equal(t, "ok", health.Database)
	require.Equal(t, "results", health.Service)

	resp, payload = doJSON(t, app, http.MethodGet, "/down", "")
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	require.NoError(t, json.Unmarshal(payload.Data, &health))
	require.Equal(t, "unreachable", health.Database)

	resp, payload = doJSON(t, app, http.MethodGet, "/bare", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(payload.Data, &health))
	require.Equal(t, "unchecked", health.Database)
}
