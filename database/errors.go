package database

import "errors"

var (
	// ErrInvalidParameter is returned when a parameter cannot be marshaled,
	// for example a table-valued parameter without a type name.
	ErrInvalidParameter = errors.New("database: invalid parameter")

	// ErrInvalidConnectionString is returned when an executor is created
	// with an empty or blank connection string.
	ErrInvalidConnectionString = errors.New("database: connection string cannot be empty")

	// ErrInvalidTimeout is returned when an executor is created with a
	// command timeout that is not positive.
	ErrInvalidTimeout = errors.New("database: command timeout must be positive")

	// ErrUnsupported is returned when a driver cannot run a command kind or
	// bind a parameter kind.
	ErrUnsupported = errors.New("database: not supported by driver")
)
