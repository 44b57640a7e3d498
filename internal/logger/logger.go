// Package logger builds the process-wide zap logger from config.LogConfig.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"library-catalog/internal/config"
)

var (
	log       *zap.Logger
	atomLevel = zap.NewAtomicLevel()
)

// Init installs the logger described by cfg. Until Init succeeds, Get returns a no-op logger.
// UpdateLevel changes the level of the installed logger.
func Init(cfg config.LogConfig) error {
	l, level, err := build(cfg)
	if err != nil {
		return err
	}
	log, atomLevel = l, level
	return nil
}

// New builds a logger without installing it. Its level is its own and does
// not follow UpdateLevel.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	l, _, err := build(cfg)
	return l, err
}

func build(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var writeSyncer zapcore.WriteSyncer
	var tty bool
	switch cfg.Output {
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, level, fmt.Errorf("failed to create log directory: %w", err)
		}
		writeSyncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		})
	case "stdout":
		writeSyncer = zapcore.Lock(os.Stdout)
		tty = term.IsTerminal(int(os.Stdout.Fd()))
	default:
		writeSyncer = zapcore.Lock(os.Stderr)
		tty = term.IsTerminal(int(os.Stderr.Fd()))
	}

	l := zap.New(zapcore.NewCore(newEncoder(cfg.Format, tty, encoderConfig), writeSyncer, level),
		zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return l, level, nil
}

// NewWriter builds a logger that writes to w, for tests and embedding.
func NewWriter(cfg config.LogConfig, w io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = ""
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	return zap.New(zapcore.NewCore(newEncoder(cfg.Format, false, encoderConfig), zapcore.AddSync(w), level))
}

// newEncoder picks JSON only when asked for; a terminal always gets the console encoder.
func newEncoder(format string, tty bool, ec zapcore.EncoderConfig) zapcore.Encoder {
	if format == "json" && !tty {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Get() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func UpdateLevel(level string) {
	atomLevel.SetLevel(parseLevel(level))
}

func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Sync flushes buffered entries, ignoring the errors fsync returns for terminals and pipes.
func Sync() error {
	if log == nil {
		return nil
	}
	if err := log.Sync(); err != nil {
		errStr := err.Error()
		if !strings.Contains(errStr, "inappropriate ioctl for device") &&
			!strings.Contains(errStr, "invalid argument") &&
			!strings.Contains(errStr, "bad file descriptor") {
			return err
		}
	}
	return nil
}
