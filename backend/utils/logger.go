package utils

import (
	"log"
	"os"
)

// LoggerConfig controls how InitLogger builds the process logger.
type LoggerConfig struct {
	Prefix string
	Output *os.File
}

// InitLogger builds the shared request/process logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "[Progress Tracker] "
	}

	return log.New(cfg.Output, cfg.Prefix, log.LstdFlags|log.LUTC)
}
