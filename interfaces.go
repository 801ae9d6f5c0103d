package dataaccess

// Environment reports the runtime environment.
// Applications implement this interface to select logging behavior.
type Environment interface {
	// IsDevelopment returns true if running in development mode.
	IsDevelopment() bool

	// IsProduction returns true if running in production mode.
	IsProduction() bool

	// IsTest returns true if running in test mode.
	IsTest() bool
}

// ConnectionResolver looks up the connection string configured for a
// database target.
type ConnectionResolver interface {
	ConnectionString(target Target) (string, error)
}

// ResolverFunc adapts a function to ConnectionResolver.
type ResolverFunc func(target Target) (string, error)

// ConnectionString calls f(target).
func (f ResolverFunc) ConnectionString(target Target) (string, error) {
	return f(target)
}
