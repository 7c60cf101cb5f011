package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	// SILENT disables all output.
	SILENT
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case SILENT:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name (case-insensitive) to a LogLevel.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "SILENT", "OFF", "NONE":
		return SILENT, true
	}
	return INFO, false
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// EnvLevel is the environment variable read by GetLogger.
const EnvLevel = "CHROMADNA_LOG_LEVEL"

type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	level      LogLevel
	prefix     string
	colorize   bool
	showCaller bool
	showTime   bool
	timeFormat string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level      LogLevel
	Prefix     string
	Colorize   bool
	ShowCaller bool
	ShowTime   bool
	TimeFormat string
	Output     io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:      INFO,
		Prefix:     "[chromadna]",
		Colorize:   false,
		ShowCaller: false,
		ShowTime:   true,
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stderr,
	}
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "2006-01-02 15:04:05"
	}

	return &Logger{
		out:        cfg.Output,
		level:      cfg.Level,
		prefix:     cfg.Prefix,
		colorize:   cfg.Colorize,
		showCaller: cfg.ShowCaller,
		showTime:   cfg.ShowTime,
		timeFormat: cfg.TimeFormat,
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return New(Config{Level: SILENT, Output: io.Discard})
}

// GetLogger returns the process-wide logger. Its level comes from
// CHROMADNA_LOG_LEVEL and defaults to INFO.
func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		if envLevel := os.Getenv(EnvLevel); envLevel != "" {
			if lvl, ok := ParseLevel(envLevel); ok {
				cfg.Level = lvl
			}
		}
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *Logger) SetColorize(colorize bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorize = colorize
}

func (l *Logger) SetShowCaller(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showCaller = show
}

// With returns a copy of l whose messages carry an extra prefix.
func (l *Logger) With(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := prefix
	if l.prefix != "" {
		p = l.prefix + " " + prefix
	}
	return &Logger{
		out:        l.out,
		level:      l.level,
		prefix:     p,
		colorize:   l.colorize,
		showCaller: l.showCaller,
		showTime:   l.showTime,
		timeFormat: l.timeFormat,
	}
}

func (l *Logger) formatMessage(level LogLevel, msg string, args ...any) string {
	var parts []string

	if l.showTime {
		parts = append(parts, time.Now().Format(l.timeFormat))
	}

	levelStr := fmt.Sprintf("[%s]", level.String())
	if l.colorize {
		switch level {
		case DEBUG:
			levelStr = colorGray + levelStr + colorReset
		case INFO:
			levelStr = colorBlue + levelStr + colorReset
		case WARN:
			levelStr = colorYellow + levelStr + colorReset
		case ERROR:
			levelStr = colorRed + levelStr + colorReset
		}
	}
	parts = append(parts, levelStr)

	if l.showCaller {
		if _, file, line, ok := runtime.Caller(3); ok {
			if idx := strings.LastIndex(file, "/"); idx >= 0 {
				file = file[idx+1:]
			}
			parts = append(parts, fmt.Sprintf("%s:%d", file, line))
		}
	}

	if l.prefix != "" {
		parts = append(parts, l.prefix)
	}

	if len(args) > 0 {
		parts = append(parts, fmt.Sprintf(msg, args...))
	} else {
		parts = append(parts, msg)
	}

	return strings.Join(parts, " ")
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || l.level == SILENT {
		return
	}
	fmt.Fprintln(l.out, l.formatMessage(level, msg, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.log(DEBUG, format, args...) }

func (l *Logger) Infof(format string, args ...any) { l.log(INFO, format, args...) }

func (l *Logger) Warnf(format string, args ...any) { l.log(WARN, format, args...) }

func (l *Logger) Errorf(format string, args ...any) { l.log(ERROR, format, args...) }

// Package-level convenience functions using the default logger

func Debugf(format string, args ...any) { GetLogger().Debugf(format, args...) }

func Infof(format string, args ...any) { GetLogger().Infof(format, args...) }

func Warnf(format string, args ...any) { GetLogger().Warnf(format, args...) }

func Errorf(format string, args ...any) { GetLogger().Errorf(format, args...) }

// SetLevel sets the log level for the default logger
func SetLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}

// SetOutput sets the output for the default logger
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}
