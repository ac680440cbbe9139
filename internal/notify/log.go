package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes alerts to the application log
type LogSender struct{}

func (LogSender) Channel() string {
	return "log"
}

func (LogSender) Send(_ context.Context, target, subject, body string) error {
	zap.L().Info(subject, zap.String("target", target), zap.String("body", body))
	return nil
}
