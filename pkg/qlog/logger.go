package qlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Verbosity selects how chatty the CLI is on stderr.
type Verbosity int

const (
	Quiet Verbosity = iota - 1
	Normal
	Verbose
)

// Level maps a verbosity to the minimum slog level that gets printed.
func (v Verbosity) Level() slog.Level {
	switch {
	case v < Normal:
		return slog.LevelWarn
	case v > Normal:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseVerbosity resolves the --quiet and --verbose flags. Quiet wins.
func ParseVerbosity(quiet, verbose bool) Verbosity {
	switch {
	case quiet:
		return Quiet
	case verbose:
		return Verbose
	default:
		return Normal
	}
}

// Logger wraps slog.Logger with convenience methods
type Logger struct {
	*slog.Logger
}

// simpleHandler formats logs in a clean, CLI-friendly way
type simpleHandler struct {
	level  slog.Level
	mu     *sync.Mutex
	output io.Writer
	attrs  []slog.Attr
	group  string
}

func (h *simpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *simpleHandler) Handle(_ context.Context, r slog.Record) error {
	// Format: <icon> message key=value, key=value
	var b strings.Builder

	switch {
	case r.Level >= slog.LevelError:
		b.WriteString("❌ ")
	case r.Level >= slog.LevelWarn:
		b.WriteString("⚠️  ")
	case r.Level >= slog.LevelInfo:
		b.WriteString("ℹ️  ")
	default:
		b.WriteString("🔍 ")
	}

	b.WriteString(r.Message)

	first := true
	write := func(a slog.Attr) {
		if first {
			b.WriteString(" ")
			first = false
		} else {
			b.WriteString(", ")
		}
		b.WriteString(a.Key)
		b.WriteString("=")
		b.WriteString(a.Value.Resolve().String())
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if !a.Equal(slog.Attr{}) {
			write(h.qualify(a))
		}
		return true
	})

	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.output, b.String())
	return err
}

// qualify prefixes the attribute key with the open group, if any.
func (h *simpleHandler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func (h *simpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return &next
}

func (h *simpleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	next.group = name
	return &next
}

// NewLogger creates a new logger with the specified level and output
func NewLogger(level slog.Level, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	handler := &simpleHandler{
		level:  level,
		mu:     &sync.Mutex{},
		output: output,
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

var (
	setupOnce sync.Once
	logFile   *lumberjack.Logger
)

// Setup builds the process logger for v on stderr and installs it as the
// slog default. When file is set every record down to debug is also written
// there as JSON, rotated by size. Only the first call has any effect.
func Setup(v Verbosity, file string) *Logger {
	var l *Logger
	setupOnce.Do(func() {
		var sink io.Writer
		if file != "" {
			logFile = &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
			sink = logFile
		}
		l = &Logger{Logger: slog.New(newHandler(v.Level(), os.Stderr, sink))}
		slog.SetDefault(l.Logger)
	})
	if l == nil {
		l = &Logger{Logger: slog.Default()}
	}
	return l
}

// newHandler prints records at level and above to console. A non-nil file
// additionally receives every record as JSON.
func newHandler(level slog.Level, console, file io.Writer) slog.Handler {
	h := slog.Handler(&simpleHandler{level: level, mu: &sync.Mutex{}, output: console})
	if file == nil {
		return h
	}
	return slogmulti.Fanout(h, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Close flushes and closes the log file opened by Setup, if any.
func Close() error {
	if logFile == nil {
		return nil
	}
	return logFile.Close()
}
