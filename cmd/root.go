package cmd

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/rios0rios0/pipeforge/application"
	"github.com/rios0rios0/pipeforge/infrastructure/store"
)

var (
	// Global flags
	hub      string
	verbose  bool
	revision string
	authUser string
	authPass string
)

var rootCmd = &cobra.Command{
	Use:   "pipeforge",
	Short: "Pipeline asset resolver and cache manager",
	Long: `Resolves short pipeline identifiers (e.g. org/name) into locally cached,
version-controlled checkouts ready to be handed to an execution engine.

Supports GitHub, GitLab, Bitbucket, and local-filesystem hosting providers.
Assets are cached under $PIPEFORGE_HOME (default ~/.pipeforge/assets).`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func Execute() error {
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&hub, "hub", "", "Hosting provider name (default: infer from checkout, then $PIPEFORGE_HUB)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// injectFactory builds the manager factory through the DIG container.
func injectFactory() (*application.ManagerFactory, error) {
	container := dig.New()
	if err := application.RegisterProviders(container); err != nil {
		return nil, err
	}

	var factory *application.ManagerFactory
	if err := container.Invoke(func(f *application.ManagerFactory) {
		factory = f
	}); err != nil {
		return nil, fmt.Errorf("failed to wire application container: %w", err)
	}
	return factory, nil
}

// injectStore builds the asset store through the DIG container.
func injectStore() (*store.AssetStore, error) {
	container := dig.New()
	if err := application.RegisterProviders(container); err != nil {
		return nil, err
	}

	var assets *store.AssetStore
	if err := container.Invoke(func(s *store.AssetStore) {
		assets = s
	}); err != nil {
		return nil, fmt.Errorf("failed to wire application container: %w", err)
	}
	return assets, nil
}

func buildManager(identifier string) (*application.AssetManager, error) {
	factory, err := injectFactory()
	if err != nil {
		return nil, err
	}
	return factory.Build(identifier, application.Options{
		Hub:      hub,
		User:     authUser,
		Password: authPass,
	})
}
