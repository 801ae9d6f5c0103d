package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/karloscodes/dataaccess"
	"github.com/karloscodes/dataaccess/middleware"
	"github.com/karloscodes/dataaccess/sqlite"
)

// TestServerOptions configures test server creation.
type TestServerOptions struct {
	// Fixtures run against both the production and the development database.
	Fixtures []string

	// ProductionFixtures run against the production database only.
	ProductionFixtures []string

	// DevelopmentFixtures run against the development database only.
	DevelopmentFixtures []string

	// Route mounting function
	RouteMountFunc func(app *fiber.App, mgr *dataaccess.Manager, resolver dataaccess.ConnectionResolver)
}

// TestServer wraps a fiber app routed to two SQLite databases.
type TestServer struct {
	t       *testing.T
	App     *fiber.App
	Manager *dataaccess.Manager
	Config  *TestConfig
}

// NewTestServer creates a test server whose production and development
// targets are separate temp-file SQLite databases.
func NewTestServer(t *testing.T, opts ...TestServerOptions) *TestServer {
	t.Helper()

	var options TestServerOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	production := SetupTestDB(t, TestDBOptions{
		Name:     "production.db",
		Fixtures: append(append([]string{}, options.Fixtures...), options.ProductionFixtures...),
	})
	development := SetupTestDB(t, TestDBOptions{
		Name:     "development.db",
		Fixtures: append(append([]string{}, options.Fixtures...), options.DevelopmentFixtures...),
	})

	logger := NewTestLogger()
	config := NewTestConfig(production, development)
	mgr := dataaccess.NewManager(sqlite.NewDriver(), dataaccess.WithLogger(logger))

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger, true),
	})
	app.Use(middleware.Recover(logger))
	app.Use(middleware.SelectDatabase(config))

	if options.RouteMountFunc != nil {
		options.RouteMountFunc(app, mgr, config)
	}

	return &TestServer{
		t:       t,
		App:     app,
		Manager: mgr,
		Config:  config,
	}
}

// Request performs a test request and returns the response.
func (ts *TestServer) Request(method, path string, body ...string) *http.Response {
	ts.t.Helper()

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = strings.NewReader(body[0])
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.App.Test(req, -1)
	if err != nil {
		ts.t.Fatalf("testsupport: request failed: %v", err)
	}

	return resp
}

// Get performs a GET request.
func (ts *TestServer) Get(path string) *http.Response {
	return ts.Request(http.MethodGet, path)
}

// Post performs a POST request with JSON body.
func (ts *TestServer) Post(path, body string) *http.Response {
	return ts.Request(http.MethodPost, path, body)
}

// ReadBody reads and closes the response body.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("testsupport: read body: %v", err)
	}
	return string(b)
}
