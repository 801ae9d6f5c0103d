package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karloscodes/dataaccess"
)

func TestLoad(t *testing.T) {
	t.Run("reads prefixed environment variables", func(t *testing.T) {
		t.Setenv("ORDERS_ENV", "development")
		t.Setenv("ORDERS_PORT", "9090")
		t.Setenv("ORDERS_DBMAIN", "server=prod;database=DbMain")
		t.Setenv("ORDERS_DBMAIN_DEVELOP", "server=dev;database=DbMain_Develop")
		t.Setenv("ORDERS_DATABASE_TIMEOUT_SECONDS", "30")
		t.Setenv("ORDERS_JWT_ISSUER", "orders-api")

		cfg, err := Load("orders")
		require.NoError(t, err)

		assert.Equal(t, "orders", cfg.AppName)
		assert.True(t, cfg.IsDevelopment())
		assert.Equal(t, "9090", cfg.GetPort())
		assert.Equal(t, "info", cfg.GetLogLevel())
		assert.Equal(t, "sqlserver", cfg.Database.Driver)
		assert.Equal(t, 30, cfg.Database.TimeoutSeconds)
		assert.Equal(t, "orders-api", cfg.Jwt.Issuer)
		assert.Equal(t, 7, cfg.Jwt.ExpiresInDays)

		cs, err := cfg.ConnectionString(dataaccess.Production)
		require.NoError(t, err)
		assert.Equal(t, "server=prod;database=DbMain", cs)

		cs, err = cfg.ConnectionString(dataaccess.Development)
		require.NoError(t, err)
		assert.Equal(t, "server=dev;database=DbMain_Develop", cs)
	})

	t.Run("defaults to production and requires DbMain", func(t *testing.T) {
		_, err := Load("orders")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ORDERS_DBMAIN is REQUIRED in production")
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Setenv("ORDERS_ENV", "staging")
		t.Setenv("ORDERS_DATABASE_DRIVER", "postgres")
		t.Setenv("ORDERS_DATABASE_TIMEOUT_SECONDS", "0")

		_, err := Load("orders")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Config.Environment")
		assert.Contains(t, err.Error(), "Config.Database.Driver")
		assert.Contains(t, err.Error(), "Config.Database.TimeoutSeconds")
	})

	t.Run("rejects short JWT keys", func(t *testing.T) {
		t.Setenv("ORDERS_ENV", "test")
		t.Setenv("ORDERS_JWT_KEY", "too-short")

		_, err := Load("orders")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Config.Jwt.Key")
	})

	t.Run("reads a .env file", func(t *testing.T) {
		dir := t.TempDir()
		env := "ORDERS_ENV=test\nORDERS_DBMAIN_DEVELOP=server=file;database=DbMain_Develop\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		cfg, err := Load("orders")
		require.NoError(t, err)
		assert.True(t, cfg.IsTest())

		cs, err := cfg.ConnectionString(dataaccess.Development)
		require.NoError(t, err)
		assert.Equal(t, "server=file;database=DbMain_Develop", cs)
	})
}

func TestConfig_ConnectionString(t *testing.T) {
	cfg := &Config{ConnectionStrings: ConnectionStrings{Main: "main"}}

	_, err := cfg.ConnectionString(dataaccess.Development)
	assert.ErrorIs(t, err, ErrMissingConnectionString)
	assert.Contains(t, err.Error(), DevelopConnection)

	_, err = cfg.ConnectionString(dataaccess.Target("staging"))
	assert.Error(t, err)
}

func TestConfig_Environment(t *testing.T) {
	cfg := &Config{Environment: Production}
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsTest())
}

func TestConfig_DriverConfig(t *testing.T) {
	cfg := &Config{
		AppName: "orders",
		Database: DatabaseConfig{
			Encrypt:                "strict",
			TrustServerCertificate: true,
			BusyTimeoutMs:          250,
		},
	}

	dc := cfg.DriverConfig()
	assert.Equal(t, "orders", dc.AppName)
	assert.Equal(t, "strict", dc.SQLServer.Encrypt)
	assert.True(t, dc.SQLServer.TrustServerCertificate)
	assert.Equal(t, 250, dc.SQLite.BusyTimeout)
}
