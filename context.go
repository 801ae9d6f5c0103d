package dataaccess

import "context"

type ctxKey int

const (
	connectionStringKey ctxKey = iota
	requestAbortKey
	targetKey
)

// Target names one of the two databases a request can be routed to.
type Target string

const (
	// Production is the DbMain database.
	Production Target = "production"
	// Development is the DbMain_Develop database.
	Development Target = "development"
)

// String returns the target name.
func (t Target) String() string {
	return string(t)
}

// WithConnectionString returns a copy of ctx carrying s. Setting it again on
// a derived context shadows the earlier value for everything below it.
func WithConnectionString(ctx context.Context, s string) context.Context {
	return context.WithValue(ctx, connectionStringKey, s)
}

// ConnectionString returns the connection string carried by ctx.
func ConnectionString(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrContextNotInitialized
	}
	s, ok := ctx.Value(connectionStringKey).(string)
	if !ok {
		return "", ErrContextNotInitialized
	}
	return s, nil
}

// WithRequestAbort returns a copy of ctx carrying the host's abort signal
// for the current request.
func WithRequestAbort(ctx context.Context, abort context.Context) context.Context {
	if abort == nil {
		return ctx
	}
	return context.WithValue(ctx, requestAbortKey, abort)
}

// RequestAbort returns the request abort signal, or nil when none was set.
func RequestAbort(ctx context.Context) context.Context {
	abort, _ := ctx.Value(requestAbortKey).(context.Context)
	return abort
}

// WithTarget records which database target was selected for the request.
func WithTarget(ctx context.Context, target Target) context.Context {
	return context.WithValue(ctx, targetKey, target)
}

// TargetFrom returns the selected database target.
func TargetFrom(ctx context.Context) (Target, bool) {
	t, ok := ctx.Value(targetKey).(Target)
	return t, ok
}
