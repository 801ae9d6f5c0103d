package testsupport

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDBOptions configures test database creation.
type TestDBOptions struct {
	// Name of the database file inside the test's temp dir. Default: "test.db".
	Name string

	// Models to auto-migrate
	Models []any

	// Fixtures are SQL statements run after migration, in order.
	Fixtures []string

	// Enable SQL logging (default: silent)
	Verbose bool
}

// SetupTestDB creates a file-backed SQLite database in a temp dir and
// returns its path, usable as a connection string. A file is used because
// every data access call opens its own connection.
func SetupTestDB(t *testing.T, opts ...TestDBOptions) string {
	t.Helper()

	var options TestDBOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Name == "" {
		options.Name = "test.db"
	}

	logMode := logger.Silent
	if options.Verbose {
		logMode = logger.Info
	}

	path := filepath.Join(t.TempDir(), options.Name)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if len(options.Models) > 0 {
		if err := db.AutoMigrate(options.Models...); err != nil {
			t.Fatalf("testsupport: failed to migrate models: %v", err)
		}
	}

	for _, stmt := range options.Fixtures {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("testsupport: fixture %q failed: %v", stmt, err)
		}
	}

	return path
}
