package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/segyhp/feedesk/internal/log"
)

// cronLogger routes cron's own messages through the structured logger
type cronLogger struct {
	logger *log.Logger
}

func NewCronLogger(logger *log.Logger) cron.Logger {
	return cronLogger{logger: logger.WithComponent(log.ComponentScheduler)}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, log.FieldError, err)...)
}
