// Package logger is a small tag-style logging facade over zap.
// Call sites log as logger.Info("API", "..."), keeping log lines grep-able
// by subsystem tag.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

func init() {
	Init("info")
}

// Init (re)configures the global logger at the given level
// ("debug", "info", "warn", "error").
func Init(level string) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	)
	sugar = zap.New(core).Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = sugar.Sync()
}

// Debug logs a debug message under a subsystem tag.
func Debug(tag, msg string) {
	sugar.Debugf("[%s] %s", tag, msg)
}

// Debugf logs a formatted debug message under a subsystem tag.
func Debugf(tag, format string, args ...interface{}) {
	sugar.Debugf("[%s] %s", tag, fmt.Sprintf(format, args...))
}

// Info logs an informational message under a subsystem tag.
func Info(tag, msg string) {
	sugar.Infof("[%s] %s", tag, msg)
}

// Infof logs a formatted informational message under a subsystem tag.
func Infof(tag, format string, args ...interface{}) {
	sugar.Infof("[%s] %s", tag, fmt.Sprintf(format, args...))
}

// Success logs a completed milestone under a subsystem tag.
func Success(tag, msg string) {
	sugar.Infof("[%s] ✔ %s", tag, msg)
}

// Warn logs a warning under a subsystem tag.
func Warn(tag, msg string) {
	sugar.Warnf("[%s] %s", tag, msg)
}

// Warnf logs a formatted warning under a subsystem tag.
func Warnf(tag, format string, args ...interface{}) {
	sugar.Warnf("[%s] %s", tag, fmt.Sprintf(format, args...))
}

// Error logs an error under a subsystem tag.
func Error(tag, msg string) {
	sugar.Errorf("[%s] %s", tag, msg)
}

// Errorf logs a formatted error under a subsystem tag.
func Errorf(tag, format string, args ...interface{}) {
	sugar.Errorf("[%s] %s", tag, fmt.Sprintf(format, args...))
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("sc-trade-advisor %s\n", version)
}

// Server logs the listen address once the HTTP server is up.
func Server(addr string) {
	sugar.Infof("[HTTP] Listening on http://%s", addr)
}
