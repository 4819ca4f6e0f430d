package infra

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"github.com/seenimoa/researchdesk/internal/config"
)

// NewLogger builds the console logger described by cfg.
func NewLogger(cfg config.LoggingConfig) arbor.ILogger {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	return arbor.NewLogger().WithConsoleWriter(writerConfig(cfg)).WithLevelFromString(level)
}

func writerConfig(cfg config.LoggingConfig) models.WriterConfiguration {
	wc := models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}
	switch cfg.Format {
	case "json":
		wc.OutputType = models.OutputFormatJSON
	case "logfmt":
		wc.OutputType = models.OutputFormatLogfmt
	}
	return wc
}

// NopLogger returns a logger with no writers attached.
func NopLogger() arbor.ILogger {
	return arbor.NewLogger()
}
