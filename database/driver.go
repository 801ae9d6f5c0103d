package database

import (
	"gorm.io/gorm"
)

// CommandKind tells the driver how to interpret command text.
type CommandKind int

const (
	// Text is a plain SQL statement.
	Text CommandKind = iota
	// StoredProcedure is the name of a procedure invoked with named parameters.
	StoredProcedure
)

// String returns the command kind name used in logs.
func (k CommandKind) String() string {
	switch k {
	case Text:
		return "text"
	case StoredProcedure:
		return "stored_procedure"
	default:
		return "unknown"
	}
}

// Driver defines the interface for database-specific operations.
// Implementations translate marshaled parameters into driver arguments and
// provide the GORM dialector used to map result rows.
type Driver interface {
	// Name returns the driver name (e.g., "sqlserver", "sqlite").
	Name() string

	// SQLDriverName returns the name the driver registered with database/sql.
	SQLDriverName() string

	// ConfigureDSN modifies the DSN with driver-specific options.
	// For SQL Server: adds app name, encrypt.
	// For SQLite: adds busy_timeout.
	ConfigureDSN(dsn string, cfg *Config) string

	// Dialector returns a GORM dialector bound to an already open connection.
	Dialector(conn gorm.ConnPool) gorm.Dialector

	// Statement returns the command text to send for the given kind.
	// Drivers that cannot run stored procedures return ErrUnsupported.
	Statement(kind CommandKind, text string) (string, error)

	// Bind converts a parameter bag into driver arguments. The returned
	// collect func copies output parameter values back into the bag and
	// must be called after the command has run.
	Bind(bag *Bag) (args []any, collect func(), err error)
}
