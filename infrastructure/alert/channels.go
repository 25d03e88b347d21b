package alert

import (
	"go.uber.org/zap"

	"instant-swap-go/infrastructure/logger"
)

// LoggerChannel writes alerts through the structured logger, mapping alert
// levels onto log levels.
type LoggerChannel struct {
	Log *logger.Logger
}

func (c LoggerChannel) Send(a Alert) error {
	fields := make([]zap.Field, 0, len(a.Fields)+2)
	fields = append(fields, zap.String("alertLevel", string(a.Level)), zap.Time("alertTs", a.Timestamp))
	for k, v := range a.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch a.Level {
	case LevelError, LevelCritical:
		c.Log.Error(a.Message, fields...)
	case LevelWarning:
		c.Log.Warn(a.Message, fields...)
	default:
		c.Log.Info(a.Message, fields...)
	}
	return nil
}

func (c LoggerChannel) Name() string { return "logger" }
