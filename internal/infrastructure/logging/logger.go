package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with a level that can change at runtime.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// FromSettings builds a logger from the LOG_LEVEL and LOG_DEV values.
// Development mode writes colored console lines at debug level, otherwise
// JSON at info. A non-empty level overrides the mode's default.
func FromSettings(level string, development bool) (*Logger, error) {
	lvl := zapcore.InfoLevel
	if development {
		lvl = zapcore.DebugLevel
	}
	if level != "" {
		parsed, err := parseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	atomic := zap.NewAtomicLevelAt(lvl)
	cfg := zap.Config{
		Level:             atomic,
		Development:       development,
		Encoding:          "json",
		EncoderConfig:     productionEncoder(),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !development,
	}
	if development {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{Logger: logger, level: atomic}, nil
}

// NewDefault returns a production logger, or a no-op one if it cannot be
// built.
func NewDefault() *Logger {
	logger, err := FromSettings("", false)
	if err != nil {
		return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
	}
	return logger
}

// SetLevel changes the level at runtime
func (l *Logger) SetLevel(level string) error {
	parsed, err := parseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(parsed)
	return nil
}

// Level returns the current level
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

func productionEncoder() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return enc
}
