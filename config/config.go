package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/pipeforge/domain"
)

// Provider backend types.
const (
	TypeGitHub    = "github"
	TypeGitLab    = "gitlab"
	TypeBitbucket = "bitbucket"
	TypeLocal     = "local"
)

// ProviderConfig describes a single hosting-provider instance.
type ProviderConfig struct {
	Name     string `yaml:"name"`     // Unique name, also the selection key
	Type     string `yaml:"type"`     // "github", "gitlab", "bitbucket", "local"
	Server   string `yaml:"server"`   // Endpoint URL, or a directory for "local"
	User     string `yaml:"user"`     // Optional username
	Password string `yaml:"password"` // Inline, ${ENV_VAR}, or token file path
}

// HasCredentials reports whether the config carries usable credentials.
func (c ProviderConfig) HasCredentials() bool {
	return c.Password != ""
}

// Host returns the hostname part of the configured server.
func (c ProviderConfig) Host() string {
	u, err := url.Parse(c.Server)
	if err != nil || u.Host == "" {
		return c.Server
	}
	return u.Host
}

// fileConfig is the on-disk shape of the user configuration file.
type fileConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// Store merges provider configurations from built-in defaults, the user
// config file, and caller overrides, in that precedence order. The result is
// an ordered collection with unique names; a later entry replaces an earlier
// one in place.
type Store struct {
	configs []ProviderConfig
}

// NewStore creates a store seeded with the built-in defaults.
func NewStore() *Store {
	return &Store{configs: builtinDefaults()}
}

func builtinDefaults() []ProviderConfig {
	return []ProviderConfig{
		{Name: "github", Type: TypeGitHub, Server: "https://github.com"},
		{Name: "gitlab", Type: TypeGitLab, Server: "https://gitlab.com"},
		{Name: "bitbucket", Type: TypeBitbucket, Server: "https://bitbucket.org"},
	}
}

// LoadFile merges provider entries from a YAML config file.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg fileConfig
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, unmarshalErr)
	}

	for _, p := range cfg.Providers {
		if validateErr := validate(p); validateErr != nil {
			return fmt.Errorf("config file %q: %w", path, validateErr)
		}
		p.Password = ResolveSecret(p.Password)
		s.Merge(p)
	}
	return nil
}

// Merge inserts or replaces a provider configuration by name, keeping the
// original position on replacement.
func (s *Store) Merge(cfg ProviderConfig) {
	for i := range s.configs {
		if s.configs[i].Name == cfg.Name {
			s.configs[i] = cfg
			return
		}
	}
	s.configs = append(s.configs, cfg)
}

// Select returns the configuration registered under name.
func (s *Store) Select(name string) (ProviderConfig, error) {
	for _, c := range s.configs {
		if c.Name == name {
			return c, nil
		}
	}
	return ProviderConfig{}, &domain.UnknownProviderError{Name: name, Known: s.Names()}
}

// MatchServer finds the provider whose server host occurs in the given remote
// URL. Used to infer a provider from an existing checkout's origin.
func (s *Store) MatchServer(remoteURL string) (ProviderConfig, bool) {
	for _, c := range s.configs {
		host := c.Host()
		if host != "" && strings.Contains(remoteURL, host) {
			return c, true
		}
	}
	return ProviderConfig{}, false
}

// Names returns the registered provider names in order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.configs))
	for _, c := range s.configs {
		names = append(names, c.Name)
	}
	return names
}

// All returns the merged configurations in order.
func (s *Store) All() []ProviderConfig {
	out := make([]ProviderConfig, len(s.configs))
	copy(out, s.configs)
	return out
}

// FindConfigFile searches for a user configuration file in standard locations.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	candidates := []string{
		".pipeforge.yaml",
		".pipeforge.yml",
	}
	if homeDir != "" {
		candidates = append(
			candidates,
			filepath.Join(homeDir, ".pipeforge", "providers.yaml"),
			filepath.Join(homeDir, ".config", "pipeforge", "providers.yaml"),
		)
	}

	for _, p := range candidates {
		if _, statErr := os.Stat(p); statErr == nil {
			return p, nil
		}
	}
	return "", errors.New("config file not found in default locations")
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// ResolveSecret expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the secret from the file.
func ResolveSecret(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Debugf("Read secret from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

func validate(p ProviderConfig) error {
	if p.Name == "" {
		return errors.New("provider name is required")
	}
	switch p.Type {
	case TypeGitHub, TypeGitLab, TypeBitbucket, TypeLocal:
	case "":
		return fmt.Errorf("provider %q: type is required", p.Name)
	default:
		return fmt.Errorf("provider %q: unsupported type %q", p.Name, p.Type)
	}
	if p.Server == "" {
		return fmt.Errorf("provider %q: server is required", p.Name)
	}
	return nil
}
