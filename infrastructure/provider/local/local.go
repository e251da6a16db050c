package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
)

// Provider implements domain.HostingProvider over a plain directory. The
// configured server is the directory holding the repositories; it backs both
// user-defined local providers and the one-off configuration synthesized
// from a file-scheme clone URL.
type Provider struct {
	cfg  config.ProviderConfig
	root string
}

// New creates a local-filesystem provider from its configuration.
func New(cfg config.ProviderConfig) (domain.HostingProvider, error) {
	root := strings.TrimPrefix(cfg.Server, "file://")
	if root == "" {
		return nil, fmt.Errorf("local provider %q has no directory", cfg.Name)
	}
	return &Provider{cfg: cfg, root: root}, nil
}

func (p *Provider) Name() string { return p.cfg.Name }

// HasCredentials is always false: local paths need none.
func (p *Provider) HasCredentials() bool { return false }

func (p *Provider) SetCredentials(string, string) {}

// repoPath locates the repository directory: nested organization layout
// first, bare repository name second (the synthesized-provider case).
func (p *Provider) repoPath(project domain.Project) (string, error) {
	nested := filepath.Join(p.root, project.Organization, project.Repository)
	if info, err := os.Stat(nested); err == nil && info.IsDir() {
		return nested, nil
	}
	for _, name := range []string{project.Repository, project.Repository + ".git"} {
		flat := filepath.Join(p.root, name)
		if info, err := os.Stat(flat); err == nil && info.IsDir() {
			return flat, nil
		}
	}
	return "", fmt.Errorf("no repository for %s under %q", project, p.root)
}

func (p *Provider) CloneURL(_ context.Context, project domain.Project) (string, error) {
	path, err := p.repoPath(project)
	if err != nil {
		return "", err
	}
	return "file://" + path, nil
}

func (p *Provider) HomePage(project domain.Project) string {
	path, err := p.repoPath(project)
	if err != nil {
		return p.root
	}
	return path
}

func (p *Provider) ReadText(_ context.Context, project domain.Project, path, _ string) (string, error) {
	repo, err := p.repoPath(project)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(repo, path))
	if err != nil {
		return "", fmt.Errorf("failed to read %q from %s: %w", path, project, err)
	}
	return string(data), nil
}

func (p *Provider) Validate(ctx context.Context, project domain.Project, scriptPath string) error {
	repo, err := p.repoPath(project)
	if err != nil {
		return &domain.MissingRemoteProjectError{
			Project: project.String(), Provider: p.cfg.Name, Err: err,
		}
	}
	if _, statErr := os.Stat(filepath.Join(repo, scriptPath)); statErr != nil {
		return &domain.MissingRemoteProjectError{
			Project:  project.String(),
			Provider: p.cfg.Name,
			Err:      fmt.Errorf("script %q not found: %w", scriptPath, statErr),
		}
	}
	return nil
}
