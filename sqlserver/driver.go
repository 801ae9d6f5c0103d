package sqlserver

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	"github.com/karloscodes/dataaccess/database"
)

// Driver implements database.Driver for SQL Server.
type Driver struct{}

// NewDriver creates a new SQL Server driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Name returns "sqlserver".
func (d *Driver) Name() string {
	return "sqlserver"
}

// SQLDriverName returns the name registered by go-mssqldb. Under this name
// a command text without whitespace is sent as a stored procedure call.
func (d *Driver) SQLDriverName() string {
	return "sqlserver"
}

// Dialector returns a GORM SQL Server dialector bound to conn.
func (d *Driver) Dialector(conn gorm.ConnPool) gorm.Dialector {
	return sqlserver.New(sqlserver.Config{DriverName: d.SQLDriverName(), Conn: conn})
}

// ConfigureDSN adds the application name and encryption options unless the
// DSN already sets them. Both URL (sqlserver://) and key=value forms are
// accepted.
func (d *Driver) ConfigureDSN(dsn string, cfg *database.Config) string {
	if cfg == nil {
		return dsn
	}

	opts := make([][2]string, 0, 3)
	if cfg.AppName != "" {
		opts = append(opts, [2]string{"app name", cfg.AppName})
	}
	if cfg.SQLServer.Encrypt != "" {
		opts = append(opts, [2]string{"encrypt", cfg.SQLServer.Encrypt})
	}
	if cfg.SQLServer.TrustServerCertificate {
		opts = append(opts, [2]string{"TrustServerCertificate", "true"})
	}
	if len(opts) == 0 {
		return dsn
	}

	if strings.HasPrefix(strings.ToLower(dsn), "sqlserver://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		for _, opt := range opts {
			if !hasQueryKey(q, opt[0]) {
				q.Set(opt[0], opt[1])
			}
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	out := strings.TrimRight(dsn, "; ")
	for _, opt := range opts {
		if !hasADOKey(out, opt[0]) {
			out += ";" + opt[0] + "=" + opt[1]
		}
	}
	return out
}

// Statement returns the procedure name for stored procedures and the text
// unchanged otherwise.
func (d *Driver) Statement(kind database.CommandKind, text string) (string, error) {
	switch kind {
	case database.Text:
		return text, nil
	case database.StoredProcedure:
		name := strings.TrimSpace(text)
		if !validProcName(name) {
			return "", fmt.Errorf("%w: invalid stored procedure name %q", database.ErrInvalidParameter, text)
		}
		return name, nil
	default:
		return "", fmt.Errorf("%w: command kind %s", database.ErrUnsupported, kind)
	}
}

// Bind converts the bag into named arguments. Output slots are bound to
// sql.Out destinations which the returned collect func copies back into
// the bag.
func (d *Driver) Bind(bag *database.Bag) ([]any, func(), error) {
	params := bag.Params()
	args := make([]any, 0, len(params))
	dests := make(map[string]any)
	paddings := make(map[string]string)

	for _, p := range params {
		if p.Direction == database.Output {
			dest, err := outputDest(p)
			if err != nil {
				return nil, nil, err
			}
			dests[p.Name] = dest
			if ns, ok := dest.(*sql.NullString); ok {
				paddings[p.Name] = ns.String
			}
			args = append(args, sql.Named(p.BareName(), sql.Out{Dest: dest}))
			continue
		}

		args = append(args, sql.Named(p.BareName(), inputValue(p)))
	}

	// NULL outputs stay unset so readers fall back to their defaults.
	collect := func() {
		for name, dest := range dests {
			switch v := dest.(type) {
			case *sql.NullInt64:
				if v.Valid {
					bag.SetOutput(name, v.Int64)
				}
			case *sql.NullString:
				// An output the procedure never assigned comes back as the padding.
				if v.Valid && v.String != paddings[name] {
					bag.SetOutput(name, v.String)
				}
			}
		}
	}
	return args, collect, nil
}

func inputValue(p database.BoundParam) any {
	v := p.Value
	switch v.Kind() {
	case database.KindTable:
		return mssql.TVP{TypeName: v.TypeName(), Value: v.Rows()}
	case database.KindDate:
		return mssql.DateTime1(v.Interface().(time.Time))
	default:
		return v.Interface()
	}
}

func outputDest(p database.BoundParam) (any, error) {
	switch p.Value.Kind() {
	case database.KindInt:
		return &sql.NullInt64{Valid: true}, nil
	case database.KindString:
		// The driver sizes string outputs from the initial value.
		return &sql.NullString{String: strings.Repeat(" ", p.Size), Valid: true}, nil
	default:
		return nil, fmt.Errorf("%w: output parameter %s of kind %s", database.ErrUnsupported, p.Name, p.Value.Kind())
	}
}

// validProcName reports whether name is a single procedure reference.
// Whitespace is only allowed inside [bracketed] identifiers, where "]]"
// escapes a closing bracket.
func validProcName(name string) bool {
	if name == "" {
		return false
	}
	quoted := false
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case quoted && c == ']':
			if i+1 < len(name) && name[i+1] == ']' {
				i++
				continue
			}
			quoted = false
		case quoted:
		case c == '[':
			quoted = true
		case c == ' ', c == '\t', c == '\r', c == '\n', c == ';':
			return false
		}
	}
	return !quoted
}

func hasQueryKey(q url.Values, key string) bool {
	for k := range q {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func hasADOKey(dsn, key string) bool {
	for _, part := range strings.Split(dsn, ";") {
		k, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return true
		}
	}
	return false
}

// Ensure Driver implements database.Driver
var _ database.Driver = (*Driver)(nil)
