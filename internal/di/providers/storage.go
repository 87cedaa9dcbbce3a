package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/presenterapp/presenter/internal/config"
	"github.com/presenterapp/presenter/internal/logger"
	"github.com/presenterapp/presenter/internal/media"
)

// ProvideMediaStorage provides the store for images and PDFs referenced by
// flexible content.
func ProvideMediaStorage(i do.Injector) (*media.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := media.NewStorage(cfg.Storage.MediaPath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}
	return storage, nil
}
