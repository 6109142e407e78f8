package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a zap logger for the given environment.
// prod uses JSON output, local/dev use colored console output.
// levelOverride (if non-empty) overrides the log level: debug, info, warn, error.
func NewLogger(env string, levelOverride ...string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if len(levelOverride) > 0 && levelOverride[0] != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(levelOverride[0])); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", levelOverride[0], err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// FileConfig configures a rotating log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// WithFile tees l into a rotating JSON file at the same level. The returned
// function closes the file.
func WithFile(l *zap.Logger, fc FileConfig) (*zap.Logger, func() error, error) {
	if fc.Path == "" {
		return l, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(fc.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.MaxSizeMB,
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAgeDays,
		Compress:   fc.Compress,
		LocalTime:  true,
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	tee := l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		file := zapcore.NewCore(enc, zapcore.AddSync(lj), zap.LevelEnablerFunc(c.Enabled))
		return zapcore.NewTee(c, file)
	}))
	return tee, lj.Close, nil
}
