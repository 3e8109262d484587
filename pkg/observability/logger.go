package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// InitLogger builds the process logger for env and installs it as the zap
// global. Production logs JSON at info level, "test" discards everything and
// any other value gets the development console encoder.
func InitLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	switch env {
	case "production":
		cfg := zap.NewProductionConfig()
		cfg.DisableStacktrace = true
		logger, err = cfg.Build()
	case "test":
		logger = zap.NewNop()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zap.ReplaceGlobals(logger)

	return logger, nil
}
