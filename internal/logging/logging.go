// Package logging builds the diagnostic logger. The terminal belongs to the
// TUI, so diagnostics go to a JSON file and are never shown to the operator.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the log destination and verbosity.
type Options struct {
	Path  string
	Level string
}

// DefaultPath returns the log file location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}
	return filepath.Join(dir, "netinspector-tui", "netinspector.log"), nil
}

// New returns a logger writing JSON lines through a buffered syncer so callers
// never wait on disk. The returned close func flushes and releases the file.
func New(opts Options) (*zap.Logger, func(), error) {
	path := opts.Path
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	ws := &zapcore.BufferedWriteSyncer{
		WS:            zapcore.AddSync(file),
		FlushInterval: time.Second,
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), ws, level)

	logger := zap.New(core).Named("netinspector")
	closer := func() {
		_ = logger.Sync()
		_ = ws.Stop()
		_ = file.Close()
	}
	return logger, closer, nil
}

// ParseLevel maps a config string onto a zap level; empty means info.
func ParseLevel(value string) (zapcore.Level, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level %q: %w", value, err)
	}
	return level, nil
}

// OrNop returns logger, or a no-op logger when logger is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
