package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
)

const publicHost = "github.com"

// Provider implements domain.HostingProvider for GitHub and GitHub
// Enterprise servers.
type Provider struct {
	cfg      config.ProviderConfig
	user     string
	password string
	client   *gh.Client
}

// New creates a GitHub provider from its configuration.
func New(cfg config.ProviderConfig) (domain.HostingProvider, error) {
	p := &Provider{cfg: cfg, user: cfg.User, password: cfg.Password}
	if err := p.rebuildClient(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) rebuildClient() error {
	client := gh.NewClient(nil)
	if p.password != "" {
		client = client.WithAuthToken(p.password)
	}
	if p.cfg.Host() != publicHost {
		enterprise, err := client.WithEnterpriseURLs(p.cfg.Server, p.cfg.Server)
		if err != nil {
			return fmt.Errorf("invalid github server %q: %w", p.cfg.Server, err)
		}
		client = enterprise
	}
	p.client = client
	return nil
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) HasCredentials() bool { return p.password != "" }

func (p *Provider) SetCredentials(user, password string) {
	p.user = user
	p.password = password
	// A failed rebuild keeps the previous client; the server was already validated.
	_ = p.rebuildClient()
}

func (p *Provider) CloneURL(ctx context.Context, project domain.Project) (string, error) {
	repo, _, err := p.client.Repositories.Get(ctx, project.Organization, project.Repository)
	if err != nil {
		return "", fmt.Errorf("failed to resolve clone URL for %s: %w", project, err)
	}
	return repo.GetCloneURL(), nil
}

func (p *Provider) HomePage(project domain.Project) string {
	return strings.TrimSuffix(p.cfg.Server, "/") + "/" + project.String()
}

func (p *Provider) ReadText(ctx context.Context, project domain.Project, path, revision string) (string, error) {
	opts := &gh.RepositoryContentGetOptions{}
	if revision != "" {
		opts.Ref = revision
	}
	file, _, _, err := p.client.Repositories.GetContents(
		ctx, project.Organization, project.Repository, path, opts,
	)
	if err != nil {
		return "", fmt.Errorf("failed to read %q from %s: %w", path, project, err)
	}
	if file == nil {
		return "", fmt.Errorf("%q in %s is a directory, not a file", path, project)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %q from %s: %w", path, project, err)
	}
	return content, nil
}

func (p *Provider) Validate(ctx context.Context, project domain.Project, scriptPath string) error {
	if _, _, err := p.client.Repositories.Get(ctx, project.Organization, project.Repository); err != nil {
		return &domain.MissingRemoteProjectError{
			Project: project.String(), Provider: p.cfg.Name, Err: err,
		}
	}
	if _, err := p.ReadText(ctx, project, scriptPath, ""); err != nil {
		return &domain.MissingRemoteProjectError{
			Project:  project.String(),
			Provider: p.cfg.Name,
			Err:      fmt.Errorf("script %q not found: %w", scriptPath, err),
		}
	}
	return nil
}
