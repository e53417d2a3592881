package logging

import (
	"os"

	"github.com/charmbracelet/log"

	"ragrouter/internal/config"
)

// New builds the process logger from configuration. Unknown levels fall back
// to info.
func New(cfg config.LoggingConfig) *log.Logger {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if cfg.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}
