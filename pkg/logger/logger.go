package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(levelFromEnv())
	var err error
	L, err = config.Build()
	if err != nil {
		panic(err)
	}
}

// LOG_LEVEL accepts zap level names; anything unparseable means info.
func levelFromEnv() zapcore.Level {
	lvl, err := zapcore.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// WithComponent returns a child logger tagged with a component field
// (handler, service, apiclient, page, ...).
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}

// Sync flushes buffered entries; call before the process exits.
func Sync() {
	_ = L.Sync()
}
