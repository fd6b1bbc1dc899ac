// Package logger provides structured logging for FitGate.
//
// It wraps Uber's zap logger with a production configuration and a
// global instance. The log level comes from configuration:
//
//	logger.InitLogger("debug") // Options: debug, info, warn, error
//
// After initialization, use the global Log variable:
//
//	logger.Log.Info("login accepted",
//	    zap.Uint64("identity_id", id),
//	    zap.String("role", role),
//	)
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

func InitLogger(level string) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	Log, err = cfg.Build()
	if err != nil {
		panic(err)
	}
}
