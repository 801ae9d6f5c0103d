package dataaccess

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/karloscodes/dataaccess/database"
)

// DefaultTimeoutSeconds is the command timeout a Manager starts with.
const DefaultTimeoutSeconds = 60

// Executor runs commands against one database. *database.Executor
// implements it.
type Executor interface {
	QueryInto(ctx context.Context, dest any, kind database.CommandKind, text string, bag *database.Bag) error
	Execute(ctx context.Context, kind database.CommandKind, text string, bag *database.Bag) (int64, error)
}

// ExecutorFactory creates the executor for one call.
type ExecutorFactory func(connectionString string, timeoutSeconds int) (Executor, error)

// Manager is the entry point for request-scoped data access. The connection
// string of every call comes from the call's context.
type Manager struct {
	driver         database.Driver
	dbConfig       *database.Config
	logger         *slog.Logger
	defaultTimeout atomic.Int64
	newExecutor    ExecutorFactory
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDefaultTimeout sets the initial command timeout in seconds.
func WithDefaultTimeout(seconds int) Option {
	return func(m *Manager) {
		m.defaultTimeout.Store(int64(seconds))
	}
}

// WithDatabaseConfig sets the driver configuration passed to executors.
func WithDatabaseConfig(cfg *database.Config) Option {
	return func(m *Manager) {
		if cfg != nil {
			m.dbConfig = cfg
		}
	}
}

// WithExecutorFactory replaces how executors are created.
func WithExecutorFactory(f ExecutorFactory) Option {
	return func(m *Manager) {
		if f != nil {
			m.newExecutor = f
		}
	}
}

// NewManager creates a manager that runs commands through driver.
func NewManager(driver database.Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		dbConfig: database.DefaultConfig(),
		logger:   slog.Default(),
	}
	m.defaultTimeout.Store(DefaultTimeoutSeconds)
	m.newExecutor = m.openExecutor

	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) openExecutor(connectionString string, timeoutSeconds int) (Executor, error) {
	exec, err := database.NewExecutor(m.driver, connectionString, timeoutSeconds,
		database.WithConfig(m.dbConfig),
		database.WithLogger(m.logger),
	)
	if err != nil {
		return nil, err
	}
	return exec, nil
}

// DefaultTimeoutSeconds returns the command timeout used by every call.
func (m *Manager) DefaultTimeoutSeconds() int {
	return int(m.defaultTimeout.Load())
}

// SetDefaultTimeout changes the command timeout for subsequent calls.
func (m *Manager) SetDefaultTimeout(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: got %d", database.ErrInvalidTimeout, seconds)
	}
	m.defaultTimeout.Store(int64(seconds))
	return nil
}

// GetFromView runs selectClause followed by the optional whereClause and
// maps every row into T. Trailing statement separators are trimmed from
// both clauses before they are joined and terminated.
func GetFromView[T any](ctx context.Context, m *Manager, selectClause, whereClause string, whereParams ...database.Param) ([]T, error) {
	stmt, err := BuildViewQuery(selectClause, whereClause)
	if err != nil {
		return nil, err
	}
	return query[T](ctx, m, database.Text, stmt, whereParams)
}

// GetFromStoredProcedure runs procedure and maps every row of its result
// set into T.
func GetFromStoredProcedure[T any](ctx context.Context, m *Manager, procedure string, params ...database.Param) ([]T, error) {
	if strings.TrimSpace(procedure) == "" {
		return nil, fmt.Errorf("%w: procedure name is required", database.ErrInvalidParameter)
	}
	return query[T](ctx, m, database.StoredProcedure, procedure, params)
}

// ExecuteStoredProcedure runs procedure with the @msg and @result outputs
// reserved and returns them as a response. Any failure while executing
// becomes a response with result -1 and the error text as message; the
// returned error is only set when the call could not be prepared.
func (m *Manager) ExecuteStoredProcedure(ctx context.Context, procedure string, params ...database.Param) (StoredProcedureResponse, error) {
	if strings.TrimSpace(procedure) == "" {
		return StoredProcedureResponse{}, fmt.Errorf("%w: procedure name is required", database.ErrInvalidParameter)
	}

	exec, timeout, err := m.prepare(ctx)
	if err != nil {
		return StoredProcedureResponse{}, err
	}

	bag, err := database.BuildParameterBag(params)
	if err != nil {
		return StoredProcedureResponse{}, err
	}

	effective, release := BuildEffectiveContext(ctx, timeout)
	defer release()

	begin := time.Now()
	_, err = exec.Execute(effective, database.StoredProcedure, procedure, bag)
	m.trace(ctx, database.StoredProcedure, procedure, begin, err)

	if err != nil {
		return failedResponse(Cancelled(effective, err)), nil
	}
	return normalizeResponse(bag), nil
}

// BuildViewQuery joins a select clause and an optional where clause into
// one terminated statement.
func BuildViewQuery(selectClause, whereClause string) (string, error) {
	sel := trimStatement(selectClause)
	if sel == "" {
		return "", fmt.Errorf("%w: select clause is required", database.ErrInvalidParameter)
	}
	if where := trimStatement(whereClause); where != "" {
		sel += " " + where
	}
	return sel + ";", nil
}

func trimStatement(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ";"))
}

func query[T any](ctx context.Context, m *Manager, kind database.CommandKind, text string, params []database.Param) ([]T, error) {
	exec, timeout, err := m.prepare(ctx)
	if err != nil {
		return nil, err
	}

	bag, err := database.BuildInputBag(params)
	if err != nil {
		return nil, err
	}

	effective, release := BuildEffectiveContext(ctx, timeout)
	defer release()

	begin := time.Now()
	out := make([]T, 0)
	err = exec.QueryInto(effective, &out, kind, text, bag)
	m.trace(ctx, kind, text, begin, err)
	if err != nil {
		return nil, Cancelled(effective, err)
	}
	return out, nil
}

// prepare resolves the connection string carried by ctx and creates the
// executor for one call.
func (m *Manager) prepare(ctx context.Context) (Executor, int, error) {
	connectionString, err := ConnectionString(ctx)
	if err != nil {
		return nil, 0, err
	}
	timeout := m.DefaultTimeoutSeconds()
	exec, err := m.newExecutor(connectionString, timeout)
	if err != nil {
		return nil, 0, err
	}
	return exec, timeout, nil
}

func (m *Manager) trace(ctx context.Context, kind database.CommandKind, text string, begin time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("kind", kind.String()),
		slog.String("command", text),
		slog.Duration("duration", time.Since(begin)),
	}
	if target, ok := TargetFrom(ctx); ok {
		attrs = append(attrs, slog.String("target", target.String()))
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	m.logger.LogAttrs(ctx, slog.LevelDebug, "data access call", attrs...)
}
