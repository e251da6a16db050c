package application

import (
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/infrastructure/provider"
	"github.com/rios0rios0/pipeforge/infrastructure/store"
)

// RegisterProviders registers all constructors with the DIG container,
// bottom-up: settings -> config store -> provider registry -> asset store ->
// resolver -> manager factory.
func RegisterProviders(container *dig.Container) error {
	constructors := []interface{}{
		config.NewSettings,
		newConfigStore,
		provider.NewDefaultRegistry,
		newAssetStore,
		NewResolver,
		NewManagerFactory,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}

// newConfigStore seeds the store with built-in defaults and merges the user
// config file when one exists.
func newConfigStore() *config.Store {
	configs := config.NewStore()
	path, err := config.FindConfigFile()
	if err != nil {
		logger.Debugf("No user provider configuration: %v", err)
		return configs
	}
	if loadErr := configs.LoadFile(path); loadErr != nil {
		logger.Warnf("Ignoring provider configuration %q: %v", path, loadErr)
	}
	return configs
}

func newAssetStore(settings config.Settings) *store.AssetStore {
	return store.New(settings.Root)
}
