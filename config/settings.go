package config

import (
	"os"
	"path/filepath"
)

// Environment variables overriding the built-in defaults.
const (
	EnvHome         = "PIPEFORGE_HOME"
	EnvOrganization = "PIPEFORGE_ORG"
	EnvHub          = "PIPEFORGE_HUB"
)

const (
	defaultOrganization = "pipeforge-io"
	defaultHub          = "github"
)

// Settings holds the environment-derived defaults: where assets are cached,
// which organization owns bare short names, and which provider is used when
// none is requested or inferred.
type Settings struct {
	Root         string // Cache root; assets live at Root/organization/repository
	Organization string // Default organization for bare short names
	Hub          string // Default hosting provider name
}

// NewSettings resolves settings from the environment.
func NewSettings() Settings {
	root := os.Getenv(EnvHome)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		root = filepath.Join(home, ".pipeforge", "assets")
	}

	org := os.Getenv(EnvOrganization)
	if org == "" {
		org = defaultOrganization
	}

	hub := os.Getenv(EnvHub)
	if hub == "" {
		hub = defaultHub
	}

	return Settings{Root: root, Organization: org, Hub: hub}
}
