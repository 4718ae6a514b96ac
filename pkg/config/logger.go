package config

import (
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// ToLoggerConfig converts LoggerConfig to logger.Config.
func (lc *LoggerConfig) ToLoggerConfig() *logger.Config {
	level := logger.LevelInfo
	switch lc.Level {
	case "debug":
		level = logger.LevelDebug
	case "warn":
		level = logger.LevelWarn
	case "error":
		level = logger.LevelError
	}

	var consoleLevel logger.Level
	if lc.ConsoleLevel != "" {
		consoleLevel = logger.Level(lc.ConsoleLevel)
	}

	return &logger.Config{
		Level:        level,
		ConsoleLevel: consoleLevel,
		OutputPath:   lc.OutputPath,
		MaxSize:      lc.MaxSize,
		MaxBackups:   lc.MaxBackups,
		MaxAge:       lc.MaxAge,
		Compress:     lc.Compress,
		Development:  lc.Development,
	}
}
