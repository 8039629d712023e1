package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a no-op until Init is called so packages can log from tests.
var Logger = zap.NewNop()

// Init builds the global logger. The TUI owns the terminal, so output goes
// to path when set; an empty path logs to stderr.
func Init(development bool, path string) error {
	var config zap.Config
	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
	}

	l, err := config.Build()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// DefaultPath returns the default log file under the XDG state directory
func DefaultPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "taskboard", "taskboard.log")
}

func Sync() {
	_ = Logger.Sync()
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Error(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Logger.Error(msg, fields...)
}

// Request logs one API round trip
func Request(method, path, requestID string, status int, elapsed time.Duration, fields ...zap.Field) {
	allFields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	}
	allFields = append(allFields, fields...)
	if status >= 400 {
		Logger.Warn("api request", allFields...)
		return
	}
	Logger.Debug("api request", allFields...)
}
