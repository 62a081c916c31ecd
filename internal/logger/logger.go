package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger. Verbosity is any level string zap
// understands ("debug", "info", ...); encoding is "json" or "console",
// defaulting to the production JSON encoder when empty.
func New(verbosity, encoding string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	if encoding != "" {
		config.Encoding = encoding
	}
	return config.Build()
}
