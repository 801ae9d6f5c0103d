package dataaccess

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures the logger.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn or error. LOG_LEVEL
	// overrides it. Defaults to info in development and test, error in
	// production.
	Level string

	// Directory holds the rotated log file in production. Default: "logs".
	Directory string

	// MaxSizeMB is the file size that triggers rotation. Default: 100.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept. Default: 3.
	MaxBackups int

	// MaxAgeDays is the age after which rotated files are removed. Default: 28.
	MaxAgeDays int

	// AppName names the log file. Default: "dataaccess".
	AppName string
}

// LogConfigProvider is implemented by configuration types that carry their
// own log settings.
type LogConfigProvider interface {
	GetLogLevel() string
	GetLogDirectory() string
	GetLogMaxSizeMB() int
	GetLogMaxBackups() int
	GetLogMaxAgeDays() int
	GetAppName() string
}

// LogConfigFromProvider copies the log settings of p.
func LogConfigFromProvider(p LogConfigProvider) *LogConfig {
	return &LogConfig{
		Level:      p.GetLogLevel(),
		Directory:  p.GetLogDirectory(),
		MaxSizeMB:  p.GetLogMaxSizeMB(),
		MaxBackups: p.GetLogMaxBackups(),
		MaxAgeDays: p.GetLogMaxAgeDays(),
		AppName:    p.GetAppName(),
	}
}

// NewLogger creates a slog.Logger for env.
//
// Development and test write colored text to stdout. Production writes JSON
// to stdout and to a file rotated by lumberjack. When logCfg is nil and env
// implements LogConfigProvider, its settings are used.
func NewLogger(env Environment, logCfg *LogConfig) *slog.Logger {
	if logCfg == nil {
		if provider, ok := env.(LogConfigProvider); ok {
			logCfg = LogConfigFromProvider(provider)
		} else {
			logCfg = &LogConfig{}
		}
	}

	level := resolveLogLevel(env, logCfg.Level)
	if env.IsDevelopment() || env.IsTest() {
		return slog.New(newColorHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: level == slog.LevelDebug,
		}))
	}
	return newProdLogger(level, logCfg)
}

func resolveLogLevel(env Environment, configured string) slog.Level {
	name := configured
	if fromEnv := os.Getenv("LOG_LEVEL"); fromEnv != "" {
		name = fromEnv
	}
	if name == "" {
		if env.IsDevelopment() || env.IsTest() {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newProdLogger(level slog.Level, logCfg *LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}

	dir := valueOr(logCfg.Directory, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, valueOr(logCfg.AppName, "dataaccess")+".log"),
		MaxSize:    positiveOr(logCfg.MaxSizeMB, 100),
		MaxBackups: positiveOr(logCfg.MaxBackups, 3),
		MaxAge:     positiveOr(logCfg.MaxAgeDays, 28),
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), opts))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func positiveOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

// colorHandler writes "15:04:05 LEVEL message key=value" lines with ANSI
// colors.
type colorHandler struct {
	slog.Handler
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

func newColorHandler(w io.Writer, opts *slog.HandlerOptions) *colorHandler {
	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}
	return &colorHandler{Handler: slog.NewTextHandler(w, opts), w: w, level: level}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorBlue
	default:
		return colorGray
	}
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder
	buf.WriteString(colorGray + r.Time.Format("15:04:05") + colorReset + " ")
	buf.WriteString(levelColor(r.Level) + r.Level.String() + colorReset + " ")
	buf.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		buf.WriteString(" " + colorGray + a.Key + "=" + colorReset + a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	buf.WriteString("\n")

	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &colorHandler{Handler: h.Handler.WithAttrs(attrs), w: h.w, level: h.level, attrs: merged}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return &colorHandler{Handler: h.Handler.WithGroup(name), w: h.w, level: h.level, attrs: h.attrs}
}
