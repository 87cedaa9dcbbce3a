// Package di provides dependency injection configuration for the presenter library.
package di

import (
	"github.com/samber/do/v2"

	"github.com/presenterapp/presenter/internal/config"
	"github.com/presenterapp/presenter/internal/di/providers"
	"github.com/presenterapp/presenter/internal/logger"
	"github.com/presenterapp/presenter/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Overrides carry explicit command-line settings into the configuration.
func NewContainer(overrides config.Overrides) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, overrides)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideMediaStorage)

	// Search layer
	do.Provide(injector, providers.ProvideSearchEngine)
	do.Provide(injector, providers.ProvideFilterState)
	do.Provide(injector, providers.ProvideAggregator)

	// Export
	do.Provide(injector, providers.ProvideSlideTemplate)
	do.Provide(injector, providers.ProvideDeckWriter)

	// Business services
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideExportService)

	return injector
}

// Bootstrap initializes the core services so configuration and storage
// errors surface before any command runs.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.LibraryService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SearchService](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*service.ExportService](injector)
	return err
}
