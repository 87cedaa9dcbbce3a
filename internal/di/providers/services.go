package providers

import (
	"github.com/samber/do/v2"

	"github.com/presenterapp/presenter/internal/config"
	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/export"
	"github.com/presenterapp/presenter/internal/logger"
	"github.com/presenterapp/presenter/internal/search"
	"github.com/presenterapp/presenter/internal/service"
	"github.com/presenterapp/presenter/internal/summary"
)

// ProvideLibraryService provides the library management service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, log.Logger), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engine := do.MustInvoke[*search.Engine](i)
	aggregator := do.MustInvoke[*summary.Aggregator](i)
	filters := do.MustInvoke[*search.FilterState](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, engine, aggregator, filters, log.Logger), nil
}

// ProvideSlideTemplate provides the configured presentation template, or the
// built-in one when none is set.
func ProvideSlideTemplate(i do.Injector) (domain.PresentationTemplate, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return export.LoadTemplate(cfg.Export.TemplatePath)
}

// ProvideDeckWriter provides the deck outline writer.
func ProvideDeckWriter(_ do.Injector) (export.Writer, error) {
	return export.YAMLWriter{}, nil
}

// ProvideExportService provides the slide export service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	library := do.MustInvoke[*service.LibraryService](i)
	writer := do.MustInvoke[export.Writer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(library, writer, log.Logger), nil
}
