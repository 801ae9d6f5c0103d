package testsupport

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/karloscodes/dataaccess"
)

// TestConfig implements dataaccess.Environment and
// dataaccess.ConnectionResolver for testing.
type TestConfig struct {
	environment string
	connections map[dataaccess.Target]string
}

// NewTestConfig creates a test configuration routing production and
// development to the given connection strings.
func NewTestConfig(production, development string) *TestConfig {
	return &TestConfig{
		environment: "test",
		connections: map[dataaccess.Target]string{
			dataaccess.Production:  production,
			dataaccess.Development: development,
		},
	}
}

// IsDevelopment returns false for test config.
func (c *TestConfig) IsDevelopment() bool { return false }

// IsProduction returns false for test config.
func (c *TestConfig) IsProduction() bool { return false }

// IsTest returns true for test config.
func (c *TestConfig) IsTest() bool { return true }

// ConnectionString returns the connection string configured for target.
func (c *TestConfig) ConnectionString(target dataaccess.Target) (string, error) {
	s, ok := c.connections[target]
	if !ok || s == "" {
		return "", fmt.Errorf("testsupport: no connection string for %s", target)
	}
	return s, nil
}

// NewTestLogger creates a slog.Logger that discards all output.
// Use this for tests where you don't need to verify log messages.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
