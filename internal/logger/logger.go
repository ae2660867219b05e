// Package logger holds the process-wide structured logger. Everything
// logs JSON so the output can be shipped as-is.
package logger

import (
	"sync"

	"kitsubot/internal/config"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Init builds the logger. LOG_LEVEL overrides the default info level;
// an unparseable value falls back to info.
func Init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// Get returns the process logger, initializing it on first use.
func Get() *logrus.Logger {
	once.Do(func() {
		if logger == nil {
			Init()
		}
	})
	return logger
}
