package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger so components depend on one logging type.
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger builds a JSON production logger, or a console logger when mode is "dev".
func NewLogger(mode string) (*Logger, error) {
	config := zap.NewProductionConfig()
	if strings.ToLower(mode) == "dev" {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used by tests and tools.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with a component field.
func (l *Logger) Named(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("component", component)}
}

// WithPlatform returns a child logger tagged with the analytics platform name.
func (l *Logger) WithPlatform(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("platform", name)}
}

// Sync flushes buffered entries. Errors from syncing stdout are ignored.
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}
