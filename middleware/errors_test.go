package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karloscodes/dataaccess"
	"github.com/karloscodes/dataaccess/database"
	"github.com/karloscodes/dataaccess/middleware"
	"github.com/karloscodes/dataaccess/testsupport"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fiber error", fiber.ErrNotFound, http.StatusNotFound},
		{"invalid parameter", fmt.Errorf("build: %w", database.ErrInvalidParameter), http.StatusBadRequest},
		{"cancelled", fmt.Errorf("%w: %w", dataaccess.ErrCancelled, dataaccess.ErrCommandTimeout), http.StatusServiceUnavailable},
		{"missing context", dataaccess.ErrContextNotInitialized, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, middleware.StatusFor(tt.err))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	newFailingApp := func(isDev bool, err error) *fiber.App {
		app := fiber.New(fiber.Config{
			ErrorHandler: middleware.ErrorHandler(testsupport.NewTestLogger(), isDev),
		})
		app.Get("/", func(c *fiber.Ctx) error { return err })
		return app
	}

	decode := func(t *testing.T, resp *http.Response) map[string]string {
		t.Helper()
		defer resp.Body.Close()
		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	t.Run("hides internal errors in production", func(t *testing.T) {
		app := newFailingApp(false, errors.New("login failed for user sa"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		out := decode(t, resp)
		assert.Equal(t, "Internal Server Error", out["error"])
		assert.NotContains(t, out["message"], "sa")
	})

	t.Run("shows internal errors in development", func(t *testing.T) {
		app := newFailingApp(true, errors.New("login failed"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, "login failed", decode(t, resp)["message"])
	})

	t.Run("reports bad parameters", func(t *testing.T) {
		app := newFailingApp(false, fmt.Errorf("%w: TVP type name is required", database.ErrInvalidParameter))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decode(t, resp)["message"], "TVP type name")
	})
}

func TestRecover(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testsupport.NewTestLogger(), false),
	})
	app.Use(middleware.Recover(testsupport.NewTestLogger()))
	app.Get("/", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
