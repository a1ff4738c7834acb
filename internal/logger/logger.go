package logger

import (
	"go.uber.org/zap"
)

var log, _ = zap.NewProduction()

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func Sync() {
	_ = log.Sync()
}

// LogAdminAction writes an audit line for a dashboard action taken by the
// browser session sid.
func LogAdminAction(sid, action, params string) {
	log.Info("admin_action", zap.String("session", shortID(sid)), zap.String("action", action), zap.String("params", params))
}

func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
