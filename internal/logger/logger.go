package logger

import (
	"go.uber.org/zap"

	"mnemo/internal/config"
)

// New builds the application logger: structured JSON in production, console
// output in development.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
