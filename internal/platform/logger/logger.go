package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap SugaredLogger and scrubs contact data (emails, phone
// numbers, credentials) from structured fields before they are written.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        *Redactor
}

type Options struct {
	// DisableRedaction writes field values verbatim. Local debugging only.
	DisableRedaction bool
	// HashSalt is mixed into hashed identifiers so they cannot be joined
	// across environments.
	HashSalt string
}

// New builds a zap-backed logger with redaction on. Mode is one of
// development (default), production or test.
func New(mode string) (*Logger, error) {
	return NewWithOptions(mode, Options{})
}

func NewWithOptions(mode string, opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	var r *Redactor
	if !opts.DisableRedaction {
		r = NewRedactor(opts.HashSalt)
	}
	return &Logger{SugaredLogger: zapLogger.Sugar(), redact: r}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.redact.Fields(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, l.redact.Fields(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.redact.Fields(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.redact.Fields(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.redact.Fields(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(l.redact.Fields(keysAndValues)...),
		redact:        l.redact,
	}
}
