package util

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GetStdLogger bridges packages that only accept a *log.Logger (net/http.Server.ErrorLog)
// into zap, logging under the named subsystem at warn level
func GetStdLogger(parent *zap.Logger, sub string) *log.Logger {
	named := parent.Named(sub)
	logger, err := zap.NewStdLogAt(named, zapcore.WarnLevel)
	if err != nil {
		named.Error("Unable to bridge standard logger, falling back to info level", zap.Error(err))
		return zap.NewStdLog(named)
	}
	return logger
}
