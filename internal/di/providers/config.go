// Package providers contains dependency injection providers for the presenter library.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/presenterapp/presenter/internal/config"
	"github.com/presenterapp/presenter/internal/logger"
)

// ProvideConfig provides the application configuration, applying any
// command-line overrides registered in the injector.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	overrides, err := do.Invoke[config.Overrides](i)
	if err != nil {
		overrides = config.Overrides{}
	}
	return config.Load(overrides)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"db_path", cfg.Storage.DBPath,
		"media_path", cfg.Storage.MediaPath,
	)

	return log, nil
}
