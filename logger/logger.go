package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	globalLogger = slog.Default()
	mu           sync.RWMutex
	openFiles    []*os.File
)

type Config struct {
	Level   string   `mapstructure:"level"`   // debug/info/warn/error
	Format  string   `mapstructure:"format"`  // text/json
	Outputs []string `mapstructure:"outputs"` // stdout/stderr/file path
}

// ParseLevel maps a level name to its slog level. Unknown names are info.
func ParseLevel(name string) slog.Level {
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

// New builds a logger from cfg. The returned files must be closed by the
// caller once logging is done.
func New(cfg Config) (*slog.Logger, []*os.File, error) {
	var writers []io.Writer
	var files []*os.File
	for _, output := range cfg.Outputs {
		switch output {
		case "", "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				closeAll(files)
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				closeAll(files)
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			files = append(files, file)
			writers = append(writers, file)
		}
	}

	// 如果没有指定输出，默认使用stdout
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	out := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		closeAll(files)
		return nil, nil, fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	return slog.New(handler), files, nil
}

// Init replaces the global logger. It may be called again to reconfigure;
// files opened by a previous call are closed.
func Init(cfg Config) error {
	l, files, err := New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	closeAll(openFiles)
	globalLogger = l
	openFiles = files
	return nil
}

// Sync closes any log files opened by Init and puts the global logger back
// on slog.Default.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	closeAll(openFiles)
	openFiles = nil
	globalLogger = slog.Default()
}

func closeAll(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}
