package config

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Logging configures the process-wide logrus logger from LogLevel and
// LogFormat and returns it.
func (c *Config) Logging() *log.Logger {
	logger := log.StandardLogger()
	logger.SetOutput(os.Stdout)

	if strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
		logger.Warnf("unknown log level %q, using info", c.LogLevel)
	}
	logger.SetLevel(level)

	return logger
}
