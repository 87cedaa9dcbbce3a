package providers

import (
	"github.com/samber/do/v2"

	"github.com/presenterapp/presenter/internal/config"
	"github.com/presenterapp/presenter/internal/logger"
	"github.com/presenterapp/presenter/internal/search"
	"github.com/presenterapp/presenter/internal/summary"
)

// ProvideSearchEngine provides the query engine over the store.
func ProvideSearchEngine(i do.Injector) (*search.Engine, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return search.NewEngine(storeHandle.Store, log.Logger), nil
}

// ProvideFilterState provides the tag selection shared by every search.
func ProvideFilterState(_ do.Injector) (*search.FilterState, error) {
	return search.NewFilterState(), nil
}

// ProvideAggregator provides the result aggregator, truncating summary lines
// to the configured length.
func ProvideAggregator(i do.Injector) (*summary.Aggregator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return summary.NewAggregator(storeHandle.Store, log.Logger,
		summary.WithMaxLength(cfg.Search.SummaryLength),
	), nil
}
