package logger

import (
	"fmt"
	"github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"sync"
)

var (
	botInstance *tgbotapi.BotAPI
	adminID     int64
	once        sync.Once
)

// InitNotifier enables Telegram alerts to the operator's chat.
func InitNotifier(bot *tgbotapi.BotAPI, admin int64) {
	once.Do(func() {
		botInstance = bot
		adminID = admin
	})
}

// NotifyAdmin sends a critical alert to the operator. Without a configured
// bot it only logs.
func NotifyAdmin(msg string) {
	log.Warn("alert", zap.String("message", msg))
	if botInstance == nil || adminID == 0 {
		return
	}
	if _, err := botInstance.Send(tgbotapi.NewMessage(adminID, "[ALERT] "+msg)); err != nil {
		log.Error("alert delivery failed", zap.Error(err))
	}
}

// NotifyOnPanic recovers a panic, logs it and alerts the operator. Use as
// `defer logger.NotifyOnPanic("context")`.
func NotifyOnPanic(context string) {
	if r := recover(); r != nil {
		NotifyAdmin("Panic in " + context + ": " + toString(r))
	}
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	}
	return fmt.Sprintf("panic: %v", v)
}
