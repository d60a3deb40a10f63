package utils

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerOnce sync.Once
	logger     *zap.Logger
)

// NewLogger builds the service logger. Development mode logs human-readable
// output at debug level.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// GetLogger returns a shared production logger for code that was not handed one.
func GetLogger() *zap.Logger {
	loggerOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
		logger = l
	})
	return logger
}
