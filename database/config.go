package database

// Config provides driver configuration shared by every executor.
type Config struct {
	// AppName is reported to the server where the driver supports it.
	AppName string

	// SQLServer-specific options (ignored for other drivers)
	SQLServer SQLServerOptions

	// SQLite-specific options (ignored for other drivers)
	SQLite SQLiteOptions
}

// SQLServerOptions contains SQL Server-specific configuration.
type SQLServerOptions struct {
	// Encrypt sets the connection encryption mode ("true", "false", "strict", "disable").
	// Empty leaves the DSN untouched.
	Encrypt string

	// TrustServerCertificate skips certificate validation. Default: false.
	TrustServerCertificate bool
}

// SQLiteOptions contains SQLite-specific configuration.
type SQLiteOptions struct {
	// BusyTimeout in milliseconds. Default: 5000.
	BusyTimeout int
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AppName: "dataaccess",
		SQLite: SQLiteOptions{
			BusyTimeout: 5000,
		},
	}
}
