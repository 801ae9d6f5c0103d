package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SlowThreshold is the command duration above which executions are logged
// as warnings.
const SlowThreshold = 200 * time.Millisecond

// Executor runs one command per call on a freshly opened connection.
// It holds no connection state between calls.
type Executor struct {
	driver  Driver
	dsn     string
	timeout time.Duration
	cfg     *Config
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithConfig sets the driver configuration.
func WithConfig(cfg *Config) Option {
	return func(e *Executor) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an executor for connectionString with a command
// timeout of timeoutSeconds.
func NewExecutor(driver Driver, connectionString string, timeoutSeconds int, opts ...Option) (*Executor, error) {
	if strings.TrimSpace(connectionString) == "" {
		return nil, ErrInvalidConnectionString
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTimeout, timeoutSeconds)
	}
	if driver == nil {
		return nil, errors.New("database: driver is required")
	}

	e := &Executor{
		driver:  driver,
		dsn:     connectionString,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Driver returns the underlying driver.
func (e *Executor) Driver() Driver {
	return e.driver
}

// Timeout returns the command timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Query runs a command and maps every result row into T, in database order.
// The result is never nil.
func Query[T any](ctx context.Context, e *Executor, kind CommandKind, text string, bag *Bag) ([]T, error) {
	out := make([]T, 0)
	if err := e.QueryInto(ctx, &out, kind, text, bag); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryInto runs a command and appends the mapped rows to dest, which must
// be a pointer to a slice.
func (e *Executor) QueryInto(ctx context.Context, dest any, kind CommandKind, text string, bag *Bag) error {
	stmt, args, collect, err := e.prepare(kind, text, bag)
	if err != nil {
		return err
	}

	db, conn, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer e.release(db, conn)

	gdb, err := gorm.Open(e.driver.Dialector(conn), &gorm.Config{
		Logger:                 NewGormLogger(e.logger.With(slog.String("component", "gorm"))),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return err
	}

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	begin := time.Now()
	rows, err := conn.QueryContext(cmdCtx, stmt, args...)
	if err != nil {
		e.trace(ctx, kind, stmt, begin, 0, err)
		return err
	}

	count, err := scanRows(gdb, rows, dest)
	if closeErr := rows.Close(); err == nil {
		err = closeErr
	}
	e.trace(ctx, kind, stmt, begin, count, err)
	if err != nil {
		return err
	}

	collect()
	return nil
}

// Execute runs a command and returns the number of affected rows. Output
// parameters are copied back into bag.
func (e *Executor) Execute(ctx context.Context, kind CommandKind, text string, bag *Bag) (int64, error) {
	stmt, args, collect, err := e.prepare(kind, text, bag)
	if err != nil {
		return 0, err
	}

	db, conn, err := e.open(ctx)
	if err != nil {
		return 0, err
	}
	defer e.release(db, conn)

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	begin := time.Now()
	res, err := conn.ExecContext(cmdCtx, stmt, args...)
	if err != nil {
		e.trace(ctx, kind, stmt, begin, 0, err)
		return 0, err
	}

	affected, err := res.RowsAffected()
	e.trace(ctx, kind, stmt, begin, affected, err)
	if err != nil {
		return 0, err
	}

	collect()
	return affected, nil
}

func (e *Executor) prepare(kind CommandKind, text string, bag *Bag) (string, []any, func(), error) {
	stmt, err := e.driver.Statement(kind, text)
	if err != nil {
		return "", nil, nil, err
	}
	if bag == nil {
		bag = NewBag()
	}
	args, collect, err := e.driver.Bind(bag)
	if err != nil {
		return "", nil, nil, err
	}
	if collect == nil {
		collect = func() {}
	}
	return stmt, args, collect, nil
}

// open creates a single-connection handle and checks out its only
// physical connection. Pooling stays with the driver.
func (e *Executor) open(ctx context.Context) (*sql.DB, *sql.Conn, error) {
	db, err := sql.Open(e.driver.SQLDriverName(), e.driver.ConfigureDSN(e.dsn, e.cfg))
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, conn, nil
}

func (e *Executor) release(db *sql.DB, conn *sql.Conn) {
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		e.logger.Warn("failed to close connection", slog.String("driver", e.driver.Name()), slog.Any("error", err))
	}
	if err := db.Close(); err != nil {
		e.logger.Warn("failed to close database handle", slog.String("driver", e.driver.Name()), slog.Any("error", err))
	}
}

func (e *Executor) trace(ctx context.Context, kind CommandKind, stmt string, begin time.Time, rows int64, err error) {
	elapsed := time.Since(begin)
	attrs := []slog.Attr{
		slog.String("driver", e.driver.Name()),
		slog.String("kind", kind.String()),
		slog.String("command", stmt),
		slog.Duration("duration", elapsed),
		slog.Int64("rows", rows),
	}

	switch {
	case err != nil:
		attrs = append(attrs, slog.Any("error", err))
		e.logger.LogAttrs(ctx, slog.LevelDebug, "sql command failed", attrs...)
	case elapsed > SlowThreshold:
		e.logger.LogAttrs(ctx, slog.LevelWarn, "slow sql command", attrs...)
	default:
		e.logger.LogAttrs(ctx, slog.LevelDebug, "sql command executed", attrs...)
	}
}

// scanRows maps every remaining row into dest through GORM and returns the
// resulting slice length.
func scanRows(gdb *gorm.DB, rows *sql.Rows, dest any) (int64, error) {
	if !rows.Next() {
		return 0, rows.Err()
	}
	// ScanRows treats the current row as already fetched and consumes the
	// rest when dest is a slice.
	if err := gdb.ScanRows(rows, dest); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if v := reflect.Indirect(reflect.ValueOf(dest)); v.Kind() == reflect.Slice {
		return int64(v.Len()), nil
	}
	return 1, nil
}
