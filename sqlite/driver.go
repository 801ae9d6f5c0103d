package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karloscodes/dataaccess/database"
)

// Driver implements database.Driver for SQLite. It serves local development
// and tests: text commands only, no stored procedures or table values.
type Driver struct{}

// NewDriver creates a new SQLite driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Name returns "sqlite".
func (d *Driver) Name() string {
	return "sqlite"
}

// SQLDriverName returns the name registered by mattn/go-sqlite3.
func (d *Driver) SQLDriverName() string {
	return "sqlite3"
}

// Dialector returns a GORM SQLite dialector bound to conn.
func (d *Driver) Dialector(conn gorm.ConnPool) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: d.SQLDriverName(), Conn: conn})
}

// ConfigureDSN adds the busy timeout to the DSN unless it already sets one.
func (d *Driver) ConfigureDSN(dsn string, cfg *database.Config) string {
	if cfg == nil || cfg.SQLite.BusyTimeout <= 0 || strings.Contains(dsn, "_busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", dsn, sep, cfg.SQLite.BusyTimeout)
}

// Statement passes text commands through. SQLite has no stored procedures.
func (d *Driver) Statement(kind database.CommandKind, text string) (string, error) {
	if kind != database.Text {
		return "", fmt.Errorf("%w: sqlite cannot run %s commands", database.ErrUnsupported, kind)
	}
	return text, nil
}

// Bind converts input parameters into named arguments. Output slots are
// skipped since SQLite cannot return them; they read back as unset.
func (d *Driver) Bind(bag *database.Bag) ([]any, func(), error) {
	params := bag.Params()
	args := make([]any, 0, len(params))
	for _, p := range params {
		if p.Direction == database.Output {
			continue
		}
		if p.Value.Kind() == database.KindTable {
			return nil, nil, fmt.Errorf("%w: sqlite cannot bind table parameter %s", database.ErrUnsupported, p.Name)
		}
		args = append(args, sql.Named(p.BareName(), p.Value.Interface()))
	}
	return args, func() {}, nil
}

// Ensure Driver implements database.Driver
var _ database.Driver = (*Driver)(nil)
